package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()

	for _, d := range []Driver{DriverNone, ""} {
		store, err := Open(ctx, d, "")
		if err != nil || store != nil {
			t.Fatalf("driver %q: expected disabled store, got %v %v", d, store, err)
		}
	}

	mem, err := Open(ctx, DriverMemory, "")
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	exercise(t, mem)

	ring, err := Open(ctx, DriverMemory, "1")
	if err != nil {
		t.Fatalf("memory with capacity: %v", err)
	}
	exercise(t, ring)
	if all, _ := ring.Recent(ctx, 0); len(all) != 1 {
		t.Fatalf("capacity 1 store kept %d entries", len(all))
	}
	for _, dsn := range []string{"0", "-3", "lots"} {
		if _, err := Open(ctx, DriverMemory, dsn); err == nil {
			t.Fatalf("memory dsn %q: expected error", dsn)
		}
	}

	lite, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	exercise(t, lite)

	if _, err := Open(ctx, "mongo", ""); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	defer func() { _ = s.Close() }()
	now := time.Now().UTC()
	for i, id := range []string{"first", "second"} {
		if err := s.Record(ctx, Entry{ID: id, Operation: "gene", OccurredAt: now.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := s.Recent(ctx, 1)
	if err != nil || len(got) != 1 || got[0].ID != "second" {
		t.Fatalf("unexpected recent %+v %v", got, err)
	}
}
