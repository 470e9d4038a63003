// Package core defines the audit entry model and store contract shared by
// the persistence drivers.
package core

import (
	"context"
	"time"
)

// Driver identifies an audit persistence backend.
type Driver string

const (
	DriverNone     Driver = "none"
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Entry records the outcome of one query.
type Entry struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	Dataset     string    `json:"dataset"`
	Identifiers []string  `json:"identifiers,omitempty"`
	Status      string    `json:"status"`
	Code        int       `json:"code"`
	Message     string    `json:"message"`
	DurationMS  float64   `json:"duration_ms"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Store persists audit entries.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
