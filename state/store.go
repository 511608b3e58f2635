// Package state exposes materialized topology state for external point
// lookups. Stores register into a Registry under their name; request-handling
// code retrieves them with Lookup while processing continues to mutate them.
package state

import (
	"context"
	"iter"
)

// Store is the base interface of a queryable materialization.
type Store interface {
	// Name returns the store name.
	Name() string

	// Flush persists any cached data.
	Flush(ctx context.Context) error

	// Close closes the store.
	Close() error

	// Persistent returns true if the store persists data to disk.
	Persistent() bool
}

// KeyValueStore is a point-lookup store. Implementations synchronize their
// own content; readers observe current state, not snapshots pinned at
// registration.
type KeyValueStore[K comparable, V any] interface {
	Store

	// Get retrieves a value by key.
	// Returns (value, true, nil) if found and (zero, false, nil) if not.
	Get(ctx context.Context, key K) (V, bool, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key K, value V) error

	// Delete removes a key.
	Delete(ctx context.Context, key K) error

	// Range returns an iterator over a range of keys [from, to).
	Range(ctx context.Context, from, to K) iter.Seq2[K, V]

	// All returns an iterator over all keys.
	All(ctx context.Context) iter.Seq2[K, V]
}
