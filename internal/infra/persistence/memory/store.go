// Package memory implements an in-process audit store, mainly for tests and
// single-process deployments that only need recent history.
package memory

import (
	"context"
	"sync"

	"expdb/internal/audit/core"
)

// DefaultCapacity is the number of entries New retains.
const DefaultCapacity = 1000

// Store keeps the most recent entries in a fixed-size ring. Once full, each
// Record overwrites the oldest entry.
type Store struct {
	mu       sync.RWMutex
	entries  []core.Entry
	start    int // index of the oldest entry once the ring is full
	capacity int
}

// New returns an empty store holding DefaultCapacity entries.
func New() *Store { return NewWithCapacity(DefaultCapacity) }

// NewWithCapacity returns an empty store holding at most capacity entries.
// A non-positive capacity selects DefaultCapacity.
func NewWithCapacity(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Record stores entry, evicting the oldest one when the ring is full.
func (s *Store) Record(_ context.Context, entry core.Entry) error {
	entry.Identifiers = append([]string(nil), entry.Identifiers...)
	s.mu.Lock()
	if len(s.entries) < s.capacity {
		s.entries = append(s.entries, entry)
	} else {
		s.entries[s.start] = entry
		s.start = (s.start + 1) % s.capacity
	}
	s.mu.Unlock()
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (s *Store) Recent(_ context.Context, limit int) ([]core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]core.Entry, 0, limit)
	for k := n - 1; k >= 0 && len(out) < limit; k-- {
		e := s.entries[(s.start+k)%n]
		e.Identifiers = append([]string(nil), e.Identifiers...)
		out = append(out, e)
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
