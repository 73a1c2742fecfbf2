package diag

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/codelens/internal/store"
)

// Ring is a capped newest-first list persisted under one store key.
type Ring[T any] struct {
	store store.Store
	key   string
	cap   int

	mu sync.Mutex
}

// NewRing creates a ring of at most capacity entries.
func NewRing[T any](s store.Store, key string, capacity int) *Ring[T] {
	return &Ring[T]{store: s, key: key, cap: capacity}
}

// Push prepends v and drops the oldest entries beyond capacity.
func (r *Ring[T]) Push(ctx context.Context, v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load(ctx)
	if err != nil {
		// Unreadable history is replaced rather than blocking new entries.
		entries = nil
	}
	entries = append([]T{v}, entries...)
	if len(entries) > r.cap {
		entries = entries[:r.cap]
	}
	if err := store.SetJSON(ctx, r.store, r.key, entries); err != nil {
		return fmt.Errorf("saving %s: %w", r.key, err)
	}
	return nil
}

// List returns the entries, newest first. A missing key is an empty list.
func (r *Ring[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Clear removes every entry.
func (r *Ring[T]) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, r.key)
}

// Key returns the store key backing the ring.
func (r *Ring[T]) Key() string { return r.key }

func (r *Ring[T]) load(ctx context.Context) ([]T, error) {
	var entries []T
	if _, err := store.GetJSON(ctx, r.store, r.key, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}
