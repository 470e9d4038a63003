// Package blob re-exports the dataset storage abstractions for stable imports
// and selects a concrete backend.
package blob

import (
	"expdb/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// Info describes stored object metadata.
	Info = core.Info
	// Store is the interface for dataset storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound indicates the requested key has no object.
	ErrNotFound = core.ErrNotFound
	// ErrInvalidKey indicates a key that is empty or escapes the store root.
	ErrInvalidKey = core.ErrInvalidKey
)
