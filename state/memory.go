package state

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// MemoryKV is an in-memory KeyValueStore guarded by an RWMutex. Iteration
// yields a sorted snapshot taken when the iterator starts, so range scans
// never block concurrent writers.
type MemoryKV[K cmp.Ordered, V any] struct {
	name string

	mu sync.RWMutex
	m  map[K]V
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV[K cmp.Ordered, V any](name string) *MemoryKV[K, V] {
	return &MemoryKV[K, V]{
		name: name,
		m:    make(map[K]V),
	}
}

func (s *MemoryKV[K, V]) Name() string {
	return s.name
}

func (s *MemoryKV[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV[K, V]) Set(_ context.Context, key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV[K, V]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemoryKV[K, V]) Range(_ context.Context, from, to K) iter.Seq2[K, V] {
	return s.iterate(func(k K) bool { return k >= from && k < to })
}

func (s *MemoryKV[K, V]) All(_ context.Context) iter.Seq2[K, V] {
	return s.iterate(func(K) bool { return true })
}

func (s *MemoryKV[K, V]) iterate(include func(K) bool) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.RLock()
		keys := maps.Keys(s.m)
		slices.Sort(keys)
		snapshot := make([]V, 0, len(keys))
		kept := keys[:0]
		for _, k := range keys {
			if include(k) {
				kept = append(kept, k)
				snapshot = append(snapshot, s.m[k])
			}
		}
		s.mu.RUnlock()

		for i, k := range kept {
			if !yield(k, snapshot[i]) {
				return
			}
		}
	}
}

// Flush is a no-op for the in-memory store.
func (s *MemoryKV[K, V]) Flush(context.Context) error {
	return nil
}

// Close drops the contents.
func (s *MemoryKV[K, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[K]V)
	return nil
}

// Persistent returns false; contents do not survive a restart.
func (s *MemoryKV[K, V]) Persistent() bool {
	return false
}
