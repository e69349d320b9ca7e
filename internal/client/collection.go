package client

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Collection caches one list endpoint. The first All fetches; later calls are served
// from memory until Refresh or Invalidate. Local patches (upsert, remove) are only
// applied after the server has accepted the change.
type Collection[T any] struct {
	fetch func(context.Context) ([]T, error)
	id    func(T) uuid.UUID
	cmp   func(a, b T) int // list order; nil keeps insertion order

	mu     sync.RWMutex
	items  []T
	loaded bool
}

func newCollection[T any](fetch func(context.Context) ([]T, error), id func(T) uuid.UUID, cmp func(a, b T) int) *Collection[T] {
	return &Collection[T]{fetch: fetch, id: id, cmp: cmp}
}

// All returns the cached items, fetching them first if needed. The returned slice is
// a copy.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	c.mu.RLock()
	if c.loaded {
		items := slices.Clone(c.items)
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()
	return c.Refresh(ctx)
}

// Refresh refetches the list, replacing the cache. On error the cache is left as it was.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	items, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.mu.Unlock()
	return slices.Clone(items), nil
}

// Invalidate drops the cache so the next All fetches again.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.mu.Unlock()
}

// Loaded reports whether the cache currently holds a fetched list.
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// upsert replaces the item with the same id, or appends it, then restores the list
// order. Nothing happens while the cache is empty; the next fetch will include the item
// anyway.
func (c *Collection[T]) upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return
	}
	id := c.id(item)
	if i := slices.IndexFunc(c.items, func(v T) bool { return c.id(v) == id }); i >= 0 {
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
	}
	if c.cmp != nil {
		slices.SortStableFunc(c.items, c.cmp)
	}
}

func (c *Collection[T]) remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(c.items, func(v T) bool { return c.id(v) == id })
}
