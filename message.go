package streambind

import (
	"context"
	"fmt"
	"time"

	"github.com/streambind/streambind/transport"
)

// Message is the decoded inbound envelope handed to handlers. Key and Value
// hold whatever the binding's codec or converter produced; nil stands for an
// absent key or a tombstone value.
type Message struct {
	Binding   string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
	Key       any
	Value     any
	Headers   []transport.Header
}

// Header returns the value of the first header with the given key.
func (m *Message) Header(key string) ([]byte, bool) {
	for _, h := range m.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return nil, false
}

// Handler processes decoded inbound messages. A returned error halts the
// binding's consumer loop; there is no generic recovery around handlers.
// Per-record recovery belongs inside the handler, for example by forwarding
// to Binder.DeadLetters().
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Typed adapts a typed function to a Handler. Nil keys and tombstone values
// arrive as zero values; a decoded payload of the wrong type is an error.
//
// Example:
//
//	binder.Inbound("words-in", streambind.Typed(func(ctx context.Context, key string, word string) error {
//		...
//	}))
func Typed[K, V any](fn func(ctx context.Context, key K, value V) error) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) error {
		var key K
		if msg.Key != nil {
			k, ok := msg.Key.(K)
			if !ok {
				return fmt.Errorf("binding %s: decoded key type %T does not match handler", msg.Binding, msg.Key)
			}
			key = k
		}

		var value V
		if msg.Value != nil {
			v, ok := msg.Value.(V)
			if !ok {
				return fmt.Errorf("binding %s: decoded value type %T does not match handler", msg.Binding, msg.Value)
			}
			value = v
		}

		return fn(ctx, key, value)
	})
}
