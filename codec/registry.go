package codec

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// ErrUnknownCodec is returned by Resolve for names no codec was registered
// under. Binding configuration referencing such a name is a startup error.
var ErrUnknownCodec = errors.New("unknown codec")

// Registry maps codec names to codecs. A fresh registry carries the builtin
// codecs; applications register their own under additional names.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewRegistry returns a registry pre-populated with the builtin codecs.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[string]Codec)}
	for _, c := range []Codec{
		FromSerde(NameBytes, Bytes),
		FromSerde(NameString, String),
		FromSerde(NameInt32, Int32),
		FromSerde(NameInt64, Int64),
		FromSerde(NameFloat64, Float64),
		FromSerde(NameJSON, JSON[any]()),
	} {
		r.codecs[c.Name()] = c
	}
	return r
}

// Register adds the codec under its name, replacing any codec previously
// registered under that name. Replacing a builtin is allowed.
func (r *Registry) Register(c Codec) error {
	if c == nil {
		return errors.New("codec: register nil codec")
	}
	if c.Name() == "" {
		return errors.New("codec: register codec with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Name()] = c
	return nil
}

// Resolve returns the codec registered under name.
func (r *Registry) Resolve(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Names returns the registered codec names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := maps.Keys(r.codecs)
	slices.Sort(names)
	return names
}
