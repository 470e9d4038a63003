package blob

import (
	memorystore "expdb/internal/infra/blob/memory"
)

// MemoryStore is the in-memory Store; its Put method seeds fixtures.
type MemoryStore = memorystore.Store

// NewMemory returns an empty in-memory Store.
func NewMemory() *MemoryStore { return memorystore.New() }
