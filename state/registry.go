package state

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

var (
	// ErrStoreNotFound is returned by Lookup when no store is registered
	// under the requested name, including after deregistration or close.
	ErrStoreNotFound = errors.New("state: store not found")

	// ErrStoreTypeMismatch is returned by the generic Lookup when the
	// registered handle does not have the requested type.
	ErrStoreTypeMismatch = errors.New("state: store type mismatch")

	// ErrRegistryClosed rejects registrations after Close.
	ErrRegistryClosed = errors.New("state: registry closed")

	// ErrDuplicateStore rejects a second registration under the same name.
	ErrDuplicateStore = errors.New("state: store already registered")
)

// Registry is the directory of queryable stores. The directory itself is
// guarded by an RWMutex; store contents are synchronized by the stores, so
// lookups never serialize against the processing hot path.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]any
	closed bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]any)}
}

// Register adds a store handle under a unique name. Handles are typically
// KeyValueStore implementations but may be any queryable value.
func (r *Registry) Register(name string, handle any) error {
	if name == "" {
		return errors.New("state: register store with empty name")
	}
	if handle == nil {
		return fmt.Errorf("state: register nil handle under %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	if _, ok := r.stores[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateStore, name)
	}
	r.stores[name] = handle
	return nil
}

// Deregister removes the store from the directory. Removing an unknown name
// is a no-op. The handle itself is not closed; it still belongs to whoever
// registered it.
func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, name)
}

// Lookup returns the handle registered under name.
func (r *Registry) Lookup(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStoreNotFound, name)
	}
	return h, nil
}

// Names returns the registered store names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := maps.Keys(r.stores)
	slices.Sort(names)
	return names
}

// Close empties the directory and rejects further registrations. Handles
// implementing io.Closer are closed; their errors are aggregated. Lookups
// after Close fail with ErrStoreNotFound, so no caller can retrieve a store
// that is being torn down.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	stores := maps.Values(r.stores)
	r.stores = make(map[string]any)
	r.mu.Unlock()

	var err error
	for _, h := range stores {
		if c, ok := h.(io.Closer); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}

// Lookup retrieves the handle registered under name as type S, the caller's
// compile-time witness of the expected store type.
//
// Example:
//
//	store, err := state.Lookup[state.KeyValueStore[string, int64]](reg, "WordCounts")
func Lookup[S any](r *Registry, name string) (S, error) {
	var zero S
	h, err := r.Lookup(name)
	if err != nil {
		return zero, err
	}
	s, ok := h.(S)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrStoreTypeMismatch, name, h)
	}
	return s, nil
}
