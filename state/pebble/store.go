// Package pebble provides a persistent KeyValueStore backed by
// cockroachdb/pebble. Keys and values are encoded with codec serdes; range
// scans follow the byte order of the encoded keys.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/streambind/streambind/codec"
)

// Store is a typed key-value store over a pebble database.
type Store[K comparable, V any] struct {
	name string
	db   *pebble.DB

	keys   codec.Serde[K]
	values codec.Serde[V]
}

// Open opens (or creates) the store's database under dir/name.
func Open[K comparable, V any](dir, name string, keys codec.Serde[K], values codec.Serde[V]) (*Store[K, V], error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "streambind")
	}
	path := filepath.Join(dir, name)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &Store[K, V]{
		name:   name,
		db:     db,
		keys:   keys,
		values: values,
	}, nil
}

func (s *Store[K, V]) Name() string {
	return s.name
}

func (s *Store[K, V]) Persistent() bool {
	return true
}

func (s *Store[K, V]) Flush(ctx context.Context) error {
	return s.db.Flush()
}

func (s *Store[K, V]) Close() error {
	if err := s.db.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Store[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	var zero V
	kb, err := s.keys.Serializer(key)
	if err != nil {
		return zero, false, fmt.Errorf("store %s: encode key: %w", s.name, err)
	}

	vb, closer, err := s.db.Get(kb)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("store %s: get: %w", s.name, err)
	}
	defer closer.Close()

	buf := make([]byte, len(vb))
	copy(buf, vb)

	v, err := s.values.Deserializer(buf)
	if err != nil {
		return zero, false, fmt.Errorf("store %s: decode value: %w", s.name, err)
	}
	return v, true, nil
}

func (s *Store[K, V]) Set(_ context.Context, key K, value V) error {
	kb, err := s.keys.Serializer(key)
	if err != nil {
		return fmt.Errorf("store %s: encode key: %w", s.name, err)
	}
	vb, err := s.values.Serializer(value)
	if err != nil {
		return fmt.Errorf("store %s: encode value: %w", s.name, err)
	}
	return s.db.Set(kb, vb, &pebble.WriteOptions{Sync: false})
}

func (s *Store[K, V]) Delete(_ context.Context, key K) error {
	kb, err := s.keys.Serializer(key)
	if err != nil {
		return fmt.Errorf("store %s: encode key: %w", s.name, err)
	}
	return s.db.Delete(kb, &pebble.WriteOptions{})
}

// Range iterates over encoded keys in [from, to), in byte order.
func (s *Store[K, V]) Range(_ context.Context, from, to K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		lower, err := s.keys.Serializer(from)
		if err != nil {
			return
		}
		upper, err := s.keys.Serializer(to)
		if err != nil {
			return
		}
		s.scan(&pebble.IterOptions{LowerBound: lower, UpperBound: upper}, yield)
	}
}

// All iterates over every entry in encoded-key byte order.
func (s *Store[K, V]) All(_ context.Context) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.scan(nil, yield)
	}
}

func (s *Store[K, V]) scan(opts *pebble.IterOptions, yield func(K, V) bool) {
	it, err := s.db.NewIter(opts)
	if err != nil {
		return
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		kb := make([]byte, len(it.Key()))
		copy(kb, it.Key())

		vb, err := it.ValueAndErr()
		if err != nil {
			return
		}
		buf := make([]byte, len(vb))
		copy(buf, vb)

		k, err := s.keys.Deserializer(kb)
		if err != nil {
			return
		}
		v, err := s.values.Deserializer(buf)
		if err != nil {
			return
		}

		if !yield(k, v) {
			return
		}
	}
}
