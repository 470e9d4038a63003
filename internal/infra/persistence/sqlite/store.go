package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expdb/internal/audit/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const createTable = `CREATE TABLE IF NOT EXISTS audit_entries (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	dataset TEXT NOT NULL,
	identifiers TEXT NOT NULL,
	status TEXT NOT NULL,
	code INTEGER NOT NULL,
	message TEXT NOT NULL,
	duration_ms REAL NOT NULL,
	occurred_at TEXT NOT NULL
)`

// timeLayout has fixed-width fractional seconds so stored values sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists audit entries to a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the SQLite database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "expdb-audit.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Record inserts entry.
func (s *Store) Record(ctx context.Context, entry core.Entry) error {
	ids, err := json.Marshal(nonNil(entry.Identifiers))
	if err != nil {
		return fmt.Errorf("encode identifiers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO audit_entries
		(id, operation, dataset, identifiers, status, code, message, duration_ms, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Operation, entry.Dataset, string(ids), entry.Status, entry.Code,
		entry.Message, entry.DurationMS, entry.OccurredAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, operation, dataset, identifiers, status, code, message, duration_ms, occurred_at
		FROM audit_entries ORDER BY occurred_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Entry
	for rows.Next() {
		var (
			e        core.Entry
			ids      string
			occurred string
		)
		if err := rows.Scan(&e.ID, &e.Operation, &e.Dataset, &ids, &e.Status, &e.Code, &e.Message, &e.DurationMS, &occurred); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &e.Identifiers); err != nil {
			return nil, fmt.Errorf("decode identifiers: %w", err)
		}
		if e.OccurredAt, err = time.Parse(timeLayout, occurred); err != nil {
			return nil, fmt.Errorf("decode occurred_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
