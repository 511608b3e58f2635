// Package transport abstracts the keyed-record log transport the binder
// attaches to. Destinations are topics; delivery is partition-aware; key
// encoding on the wire is owned by the transport, never by the binder.
//
// Two implementations ship with the package: Kafka (franz-go) for production
// and Channel, an in-process hub used by tests and examples.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by Poll and Produce after the owning client closed.
var ErrClosed = errors.New("transport: closed")

// Header is a single ordered record header.
type Header struct {
	Key   string
	Value []byte
}

// Record is the wire-level unit exchanged with the transport. Key and Value
// hold raw bytes; decoding them is the binder's job.
type Record struct {
	Topic       string
	Partition   int32
	Offset      int64
	LeaderEpoch int32
	Timestamp   time.Time
	Key         []byte
	Value       []byte
	Headers     []Header

	// raw holds the implementation's native record so Mark can hand it
	// back without reconstructing commit metadata.
	raw any
}

// Header returns the value of the first header with the given key.
func (r *Record) Header(key string) ([]byte, bool) {
	for _, h := range r.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return nil, false
}

// ConsumerConfig describes a single group subscription.
type ConsumerConfig struct {
	Topic string
	Group string

	// StartOffset is "earliest" or "latest" (the default) and applies only
	// when the group has no committed offset yet.
	StartOffset string

	// MaxPollRecords bounds a single Poll call. Zero means the
	// implementation default.
	MaxPollRecords int
}

// Consumer is a group subscription to one topic.
//
// Poll blocks until records arrive, the context is done, or the consumer is
// closed. Mark flags records as processed; the commit cadence for marked
// records belongs to the transport client, not the caller.
type Consumer interface {
	Poll(ctx context.Context) ([]*Record, error)
	Mark(recs ...*Record)
	Close() error
}

// Producer publishes records synchronously. Produce returns only after the
// transport acknowledged the record, so a slow destination blocks the caller.
type Producer interface {
	Produce(ctx context.Context, rec *Record) error
	Close() error
}

// Transport creates consumers and producers for destinations. Close shuts
// down every client the transport handed out.
type Transport interface {
	Consumer(cfg ConsumerConfig) (Consumer, error)
	Producer() (Producer, error)

	// EnsureTopic creates the destination if the transport supports admin
	// operations and the destination does not exist yet.
	EnsureTopic(ctx context.Context, topic string) error

	Close() error
}
