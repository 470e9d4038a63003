package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"expdb/internal/audit/core"
	"expdb/internal/infra/persistence/postgres/testutil"
)

func withStubDB(t *testing.T) *testutil.StubConn {
	t.Helper()
	db, conn := testutil.NewStubDB()
	prev := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Errorf("unexpected driver %s", driverName)
		}
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = prev })
	return conn
}

func TestNewStoreCreatesTable(t *testing.T) {
	conn := withStubDB(t)
	s, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.db == nil {
		t.Fatalf("expected db handle")
	}
	if len(conn.Execs) != 1 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS audit_entries") {
		t.Fatalf("expected DDL, got %v", conn.Execs)
	}
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	conn := withStubDB(t)
	s, err := NewStore(ctx, "postgres://stub")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 7200))
	e := core.Entry{ID: "a", Operation: "gene_ids", Dataset: "d.csv", Identifiers: []string{"g1", "g2.t1"},
		Status: "success", Code: 200, Message: "ok", DurationMS: 2.5, OccurredAt: at}
	if err := s.Record(ctx, e); err != nil {
		t.Fatalf("Record: %v", err)
	}
	row := conn.Tables["audit_entries"][0]
	if row["identifiers"] != `["g1","g2.t1"]` || row["code"] != int64(200) {
		t.Fatalf("unexpected stored row %v", row)
	}
	if ts, ok := row["occurred_at"].(time.Time); !ok || ts.Location() != time.UTC || !ts.Equal(at) {
		t.Fatalf("occurred_at must be stored in UTC: %v", row["occurred_at"])
	}

	if err := s.Record(ctx, core.Entry{ID: "b", Operation: "metadata", OccurredAt: at.Add(time.Minute)}); err != nil {
		t.Fatalf("Record nil identifiers: %v", err)
	}
	if got := conn.Tables["audit_entries"][1]["identifiers"]; got != "[]" {
		t.Fatalf("nil identifiers should encode as [], got %v", got)
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if len(got[1].Identifiers) != 2 || got[1].Code != 200 || got[1].DurationMS != 2.5 || !got[1].OccurredAt.Equal(at) {
		t.Fatalf("unexpected decoded entry %+v", got[1])
	}

	latest, err := s.Recent(ctx, 1)
	if err != nil || len(latest) != 1 || latest[0].ID != "b" {
		t.Fatalf("limit not applied: %+v %v", latest, err)
	}
}

func TestNewStoreFailures(t *testing.T) {
	ctx := context.Background()

	conn := withStubDB(t)
	conn.FailPing = true
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}

	conn = withStubDB(t)
	conn.FailExec = true
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "ensure audit table") {
		t.Fatalf("expected DDL error, got %v", err)
	}

	prev := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }
	defer func() { sqlOpen = prev }()
	if _, err := NewStore(ctx, ""); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestQueryFailures(t *testing.T) {
	ctx := context.Background()
	conn := withStubDB(t)
	s, err := NewStore(ctx, "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	conn.FailExec = true
	if err := s.Record(ctx, core.Entry{ID: "a"}); err == nil {
		t.Fatalf("expected insert error")
	}
	conn.FailExec = false

	conn.FailQuery = true
	if _, err := s.Recent(ctx, 0); err == nil {
		t.Fatalf("expected select error")
	}
	conn.FailQuery = false

	conn.Tables["audit_entries"] = []map[string]any{{
		"id": "x", "operation": "gene", "dataset": "d", "identifiers": "not json", "status": "success",
		"code": int64(200), "message": "", "duration_ms": 1.0, "occurred_at": time.Now(),
	}}
	if _, err := s.Recent(ctx, 0); err == nil || !strings.Contains(err.Error(), "decode identifiers") {
		t.Fatalf("expected decode error, got %v", err)
	}

	conn.Tables["audit_entries"] = nil
	conn.RowsErr = errors.New("cursor lost")
	if _, err := s.Recent(ctx, 0); err == nil || !strings.Contains(err.Error(), "iterate audit entries") {
		t.Fatalf("expected rows error, got %v", err)
	}
}
