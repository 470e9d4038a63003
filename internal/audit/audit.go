// Package audit records query outcomes to a configurable persistence backend.
package audit

import (
	"context"
	"fmt"
	"strconv"

	"expdb/internal/audit/core"
	"expdb/internal/infra/persistence/memory"
	"expdb/internal/infra/persistence/postgres"
	"expdb/internal/infra/persistence/sqlite"
)

type (
	// Driver identifies an audit backend.
	Driver = core.Driver
	// Entry records the outcome of one query.
	Entry = core.Entry
	// Store persists audit entries.
	Store = core.Store
)

const (
	DriverNone     = core.DriverNone
	DriverMemory   = core.DriverMemory
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

// Open returns the Store for driver. DSN is a file path for sqlite, a
// connection string for postgres, and an optional entry capacity for memory
// (memory.DefaultCapacity when empty). DriverNone (or empty) returns nil, nil.
func Open(ctx context.Context, driver Driver, dsn string) (Store, error) {
	switch driver {
	case DriverNone, "":
		return nil, nil
	case DriverMemory:
		if dsn == "" {
			return memory.New(), nil
		}
		n, err := strconv.Atoi(dsn)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("memory audit capacity must be a positive integer, got %q", dsn)
		}
		return memory.NewWithCapacity(n), nil
	case DriverSQLite:
		return sqlite.NewStore(ctx, dsn)
	case DriverPostgres:
		return postgres.NewStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown audit driver %q", driver)
	}
}
