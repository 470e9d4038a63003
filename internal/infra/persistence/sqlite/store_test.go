package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"expdb/internal/audit/core"
)

func sampleEntries() []core.Entry {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []core.Entry{
		{ID: "a", Operation: "gene", Dataset: "grape/expr.csv", Identifiers: []string{"g1"}, Status: "success", Code: 200, Message: "Found 2 transcript(s) for id='g1'.", DurationMS: 1.25, OccurredAt: base},
		{ID: "b", Operation: "metadata", Dataset: "grape/meta.csv", Identifiers: []string{}, Status: "error", Code: 404, Message: "not found", DurationMS: 0.5, OccurredAt: base.Add(1500 * time.Millisecond)},
		{ID: "c", Operation: "gene_ids", Dataset: "grape/expr.csv", Identifiers: []string{"g1", "g2.t1"}, Status: "success", Code: 200, DurationMS: 3, OccurredAt: base.Add(2 * time.Second)},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, ":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = s.Close() }()

	entries := sampleEntries()
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []core.Entry{entries[2], entries[1], entries[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("recent mismatch (-want +got):\n%s", diff)
	}

	limited, err := s.Recent(ctx, 1)
	if err != nil || len(limited) != 1 || limited[0].ID != "c" {
		t.Fatalf("unexpected limited result %+v %v", limited, err)
	}
}

func TestStoreNilIdentifiers(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, ":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Record(ctx, core.Entry{ID: "x", Operation: "metadata", OccurredAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := s.Recent(ctx, 5)
	if err != nil || len(got) != 1 || len(got[0].Identifiers) != 0 {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
}

func TestStoreDuplicateIDFails(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, ":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = s.Close() }()
	e := sampleEntries()[0]
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, e); err == nil {
		t.Fatalf("expected primary key violation")
	}
}

func TestStorePersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	s, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.path != path {
		t.Fatalf("unexpected path %s", s.path)
	}
	if err := s.Record(ctx, sampleEntries()[0]); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	reopened, err := NewStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Recent(ctx, 0)
	if err != nil || len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("entry not persisted: %+v %v", got, err)
	}
}

func TestNewStoreDirectoryError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewStore(context.Background(), filepath.Join(blocker, "audit.db")); err == nil {
		t.Fatalf("expected error when parent is a file")
	}
}
