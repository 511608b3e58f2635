// Package convert implements the content-type conversion fallback for
// binding payloads. A converter is consulted only when native
// encoding/decoding is disabled for a binding, and only ever for values;
// record keys bypass conversion entirely.
package convert

import (
	"errors"
	"fmt"
	"mime"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// Media types of the builtin converters.
const (
	TypeJSON        = "application/json"
	TypeText        = "text/plain"
	TypeOctetStream = "application/octet-stream"
)

// Ops recorded in a ConversionError.
const (
	OpToWire   = "to-wire"
	OpFromWire = "from-wire"
)

// ErrNoConverter is returned by Negotiate for media types without a
// registered converter. Binding configuration referencing such a content
// type is a startup error.
var ErrNoConverter = errors.New("no converter for content type")

// ConversionError reports a failed payload conversion. Inbound conversion
// failures are routed exactly like codec deserialization failures.
type ConversionError struct {
	ContentType string
	Op          string
	Cause       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s %s: %v", e.Op, e.ContentType, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Converter translates between Go values and wire bytes for one media type.
type Converter interface {
	ContentType() string
	ToWire(v any) ([]byte, error)
	FromWire(data []byte) (any, error)
}

// Registry maps media types to converters.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry returns a registry carrying the builtin converters for
// application/json, text/plain and application/octet-stream.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]Converter)}
	for _, c := range []Converter{NewJSON(), NewText(), NewOctetStream()} {
		r.converters[c.ContentType()] = c
	}
	return r
}

// Register adds the converter under its media type, replacing any previous
// converter for that type.
func (r *Registry) Register(c Converter) error {
	if c == nil {
		return errors.New("convert: register nil converter")
	}
	if c.ContentType() == "" {
		return errors.New("convert: register converter with empty content type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[c.ContentType()] = c
	return nil
}

// Negotiate returns the converter for the given content type. Media type
// parameters such as charset are stripped before the lookup.
func (r *Registry) Negotiate(contentType string) (Converter, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("convert: parse content type %q: %w", contentType, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoConverter, mediaType)
	}
	return c, nil
}

// ContentTypes returns the registered media types, sorted.
func (r *Registry) ContentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := maps.Keys(r.converters)
	slices.Sort(types)
	return types
}
