// Package postgres persists audit entries to Postgres through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"expdb/internal/audit/core"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ core.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/expdb?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

const createTable = `CREATE TABLE IF NOT EXISTS audit_entries (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	dataset TEXT NOT NULL,
	identifiers TEXT NOT NULL,
	status TEXT NOT NULL,
	code INTEGER NOT NULL,
	message TEXT NOT NULL,
	duration_ms DOUBLE PRECISION NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
)`

// Store writes audit entries to the audit_entries table.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed store using dsn (falls back to defaultDSN),
// pings it and ensures the audit table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure audit table: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts entry.
func (s *Store) Record(ctx context.Context, entry core.Entry) error {
	ids := entry.Identifiers
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode identifiers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO audit_entries (id, operation, dataset, identifiers, status, code, message, duration_ms, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.Operation, entry.Dataset, string(encoded), entry.Status, entry.Code,
		entry.Message, entry.DurationMS, entry.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.Entry, error) {
	query := `SELECT id, operation, dataset, identifiers, status, code, message, duration_ms, occurred_at FROM audit_entries ORDER BY occurred_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Entry
	for rows.Next() {
		var (
			e   core.Entry
			ids string
		)
		if err := rows.Scan(&e.ID, &e.Operation, &e.Dataset, &ids, &e.Status, &e.Code, &e.Message, &e.DurationMS, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &e.Identifiers); err != nil {
			return nil, fmt.Errorf("decode identifiers: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
