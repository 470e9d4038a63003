package table

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"expdb/internal/blob"
)

var (
	// ErrNotFound means the dataset key resolves to no object (or is not a
	// valid key at all).
	ErrNotFound = errors.New("dataset not found")
	// ErrUnreadable means the object exists but could not be read or parsed.
	ErrUnreadable = errors.New("dataset unreadable")
)

// Loader resolves dataset names against a Store and parses them.
type Loader struct {
	store blob.Store
}

// NewLoader constructs a Loader over store.
func NewLoader(store blob.Store) *Loader {
	return &Loader{store: store}
}

// Load reads and parses the named dataset. Failures wrap ErrNotFound or
// ErrUnreadable. Keys ending in ".gz" are decompressed; ".tsv"/".tab" (before
// any ".gz") are tab-delimited, everything else is comma-delimited.
func (l *Loader) Load(ctx context.Context, dataset string) (*Table, error) {
	_, rc, err := l.store.Get(ctx, dataset)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, dataset, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, dataset, err)
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	name := strings.ToLower(dataset)
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, dataset, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	t, err := Parse(r, delimiterFor(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, dataset, err)
	}
	return t, nil
}

func delimiterFor(name string) rune {
	switch path.Ext(name) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}
