// Package codec defines how binding payloads are encoded to and decoded from
// raw transport bytes. Typed codecs are Serde[T] pairs; bindings reference
// codecs by name through a Registry, which hands out the type-erased Codec
// form used by the resolution machinery.
package codec

import (
	"fmt"
)

// Serializer encodes a value of type T to raw bytes.
type Serializer[T any] func(T) ([]byte, error)

// Deserializer decodes raw bytes into a value of type T.
type Deserializer[T any] func([]byte) (T, error)

// Serde pairs a Serializer and Deserializer for one payload type.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}

// Codec is the type-erased form of a Serde, registered under a name and
// resolved from binding configuration at startup.
type Codec interface {
	Name() string
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

// FromSerde adapts a typed Serde into a named Codec. Encode fails when the
// supplied value is not of type T.
func FromSerde[T any](name string, s Serde[T]) Codec {
	return serdeCodec[T]{name: name, serde: s}
}

type serdeCodec[T any] struct {
	name  string
	serde Serde[T]
}

func (c serdeCodec[T]) Name() string { return c.name }

func (c serdeCodec[T]) Encode(v any) ([]byte, error) {
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("codec %s: cannot encode value of type %T", c.name, v)
	}
	return c.serde.Serializer(t)
}

func (c serdeCodec[T]) Decode(data []byte) (any, error) {
	return c.serde.Deserializer(data)
}
