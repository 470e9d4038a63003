// Package core defines the read-side abstractions for dataset object storage
// used internally by the table loader.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete dataset storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs" // base directory on local disk (default)
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory"
)

// Info describes a stored dataset object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store provides read access to dataset objects addressed by key.
type Store interface {
	// Get returns the object metadata and its contents. Missing keys satisfy
	// errors.Is(err, ErrNotFound).
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// List returns objects whose key has the provided prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound is returned (possibly wrapped) when a key does not resolve to an object.
var ErrNotFound = errors.New("blobstore: object not found")

// ErrInvalidKey is returned when a key is empty or escapes the store root.
var ErrInvalidKey = errors.New("blobstore: invalid key")
