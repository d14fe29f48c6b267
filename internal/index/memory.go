package index

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
)

// MemoryIndex holds the last fetched catalog snapshot.
// A snapshot is replaced wholesale on every load; there are no partial updates.
type MemoryIndex struct {
	mu         sync.RWMutex
	items      []*domain.CatalogItem          // storefront order
	byID       map[string]*domain.CatalogItem // ID -> item
	loaded     bool
	lastReload time.Time                      // Timestamp of last successful load
	lastErr    *domain.FetchError             // Last failed load, cleared by a successful one
	lastErrAt  time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID: make(map[string]*domain.CatalogItem),
	}
}

// UpdateCatalog replaces the snapshot and clears the last error.
func (idx *MemoryIndex) UpdateCatalog(items []*domain.CatalogItem) {
	byID := make(map[string]*domain.CatalogItem, len(items))
	ordered := make([]*domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ordered = append(ordered, it)
		byID[it.ID] = it
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.items = ordered
	idx.byID = byID
	idx.loaded = true
	idx.lastReload = time.Now()
	idx.lastErr = nil
	idx.lastErrAt = time.Time{}
}

// SetError records a failed load. The snapshot is dropped: a failed load
// never leaves stale data behind.
func (idx *MemoryIndex) SetError(fe *domain.FetchError) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.items = nil
	idx.byID = make(map[string]*domain.CatalogItem)
	idx.loaded = false
	idx.lastErr = fe
	idx.lastErrAt = time.Now()
}

// Items returns a copy of the ordered snapshot.
func (idx *MemoryIndex) Items() []*domain.CatalogItem {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.CatalogItem, len(idx.items))
	copy(out, idx.items)
	return out
}

// Get retrieves an item by ID
func (idx *MemoryIndex) Get(id string) (*domain.CatalogItem, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	it, ok := idx.byID[id]
	return it, ok
}

// Count returns the number of items in the snapshot
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.items)
}

// Loaded reports whether a snapshot is present.
func (idx *MemoryIndex) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.loaded
}

// LastError returns the last failed load and when it happened, or nil.
func (idx *MemoryIndex) LastError() (*domain.FetchError, time.Time) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastErr, idx.lastErrAt
}

// GetLastReload returns the timestamp of the last successful load
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// FetchCatalog serves the snapshot, the last load error, or ErrNotLoaded.
func (idx *MemoryIndex) FetchCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewFetchError("index", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	switch {
	case idx.loaded:
		out := make([]*domain.CatalogItem, len(idx.items))
		copy(out, idx.items)
		return out, nil
	case idx.lastErr != nil:
		return nil, idx.lastErr
	default:
		return nil, domain.NewFetchError("index", domain.ErrNotLoaded)
	}
}
