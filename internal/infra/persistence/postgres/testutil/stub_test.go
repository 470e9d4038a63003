package testutil

import (
	"context"
	"database/sql/driver"
	"io"
	"strings"
	"testing"
	"time"
)

func TestStubDBStoresAndQueriesRows(t *testing.T) {
	ctx := context.Background()
	db, conn := NewStubDB()
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO audit_entries (id, code) VALUES ($1, $2)", "a", 200); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE x (id TEXT)"); err != nil {
		t.Fatalf("ddl: %v", err)
	}
	if len(conn.Execs) != 2 || len(conn.Tables["audit_entries"]) != 1 {
		t.Fatalf("unexpected state execs=%v tables=%v", conn.Execs, conn.Tables)
	}

	var (
		id   string
		code int
	)
	if err := db.QueryRowContext(ctx, "SELECT id, code FROM audit_entries ORDER BY id LIMIT $1", 1).Scan(&id, &code); err != nil {
		t.Fatalf("select: %v", err)
	}
	if id != "a" || code != 200 {
		t.Fatalf("unexpected row %s %d", id, code)
	}
}

func TestStubFailures(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.FailPing, conn.FailExec, conn.FailQuery = true, true, true
	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("expected ping failure")
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO t (a) VALUES ($1)", []driver.NamedValue{{Value: 1}}); err == nil {
		t.Fatalf("expected exec failure")
	}
	if _, err := conn.QueryContext(ctx, "select a from t", nil); err == nil {
		t.Fatalf("expected query failure")
	}
	if _, err := conn.Prepare("x"); err == nil {
		t.Fatalf("prepare is unsupported")
	}
	if _, err := conn.Begin(); err == nil {
		t.Fatalf("transactions are unsupported")
	}
}

func TestStubParsing(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	if _, err := conn.ExecContext(ctx, "INSERT INTO t (a, b) VALUES ($1)", []driver.NamedValue{{Value: 1}}); err == nil {
		t.Fatalf("expected column/arg mismatch")
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO t VALUES (1)", nil); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := conn.QueryContext(ctx, "update t set a = 1", nil); err == nil {
		t.Fatalf("expected select parse error")
	}
	if _, err := conn.QueryContext(ctx, "select a from ", nil); err == nil {
		t.Fatalf("expected missing table error")
	}

	conn.Tables["t"] = []map[string]any{{"a": "v"}}
	rows, err := conn.QueryContext(ctx, "select a from t", nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	dest := make([]driver.Value, 1)
	if err := rows.Next(dest); err != nil || dest[0] != "v" {
		t.Fatalf("unexpected row %v %v", dest, err)
	}
	if err := rows.Next(dest); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestStubOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	db, _ := NewStubDB()
	defer func() { _ = db.Close() }()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "c", "a"} {
		if _, err := db.ExecContext(ctx, "INSERT INTO audit_entries (id, occurred_at) VALUES ($1, $2)", id, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	ids := func(query string, args ...any) []string {
		t.Helper()
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			t.Fatalf("query %q: %v", query, err)
		}
		defer func() { _ = rows.Close() }()
		var out []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				t.Fatalf("scan: %v", err)
			}
			out = append(out, id)
		}
		return out
	}

	if got := strings.Join(ids("SELECT id FROM audit_entries ORDER BY occurred_at DESC"), ","); got != "a,c,b" {
		t.Fatalf("desc order = %s", got)
	}
	if got := strings.Join(ids("SELECT id FROM audit_entries ORDER BY id"), ","); got != "a,b,c" {
		t.Fatalf("asc order = %s", got)
	}
	if got := strings.Join(ids("SELECT id FROM audit_entries ORDER BY occurred_at DESC LIMIT $1", 2), ","); got != "a,c" {
		t.Fatalf("limited = %s", got)
	}
	if _, err := db.QueryContext(ctx, "SELECT id FROM audit_entries LIMIT 5"); err == nil {
		t.Fatalf("literal LIMIT should be rejected")
	}
	if _, err := db.QueryContext(ctx, "SELECT id FROM audit_entries LIMIT $2", 1); err == nil {
		t.Fatalf("missing LIMIT argument should fail")
	}
}
