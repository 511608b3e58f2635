// Package dlq forwards records that failed processing to dead-letter
// destinations. Forwarded records carry the original raw key and value plus
// provenance headers describing where the record came from and why it
// failed.
package dlq

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/streambind/streambind/internal/observability"
	"github.com/streambind/streambind/transport"
)

// Header keys attached to forwarded records.
const (
	HeaderOriginalTopic     = "streambind.original.topic"
	HeaderOriginalPartition = "streambind.original.partition"
	HeaderOriginalOffset    = "streambind.original.offset"
	HeaderError             = "streambind.error"
	HeaderFailedAt          = "streambind.failed.at"
	HeaderFailureID         = "streambind.failure.id"
)

// DerivedName returns the conventional dead-letter destination for records
// of the given destination consumed by the given group.
func DerivedName(destination, group string) string {
	return "error." + destination + "." + group
}

// PublishError reports a dead-letter publish that itself failed. The caller
// must not treat the triggering record as handled.
type PublishError struct {
	Destination string
	Cause       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("dlq: publish to %s: %v", e.Destination, e.Cause)
}

func (e *PublishError) Unwrap() error {
	return e.Cause
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func failureID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Option configures a Forwarder.
type Option func(*Forwarder)

var WithLog = func(log *slog.Logger) Option {
	return func(f *Forwarder) {
		f.log = log
	}
}

var WithMetrics = func(m *observability.Metrics) Option {
	return func(f *Forwarder) {
		f.metrics = m
	}
}

// Forwarder publishes failed records to dead-letter destinations. Publishes
// are synchronous; a slow dead-letter destination blocks the caller.
type Forwarder struct {
	producer transport.Producer
	group    string
	log      *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// NewForwarder returns a forwarder publishing through producer. The group is
// used for derived destination names.
func NewForwarder(producer transport.Producer, group string, opts ...Option) *Forwarder {
	f := &Forwarder{
		producer: producer,
		group:    group,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   observability.Tracer(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forward publishes the record to the destination derived from the record's
// topic and the forwarder's group.
func (f *Forwarder) Forward(ctx context.Context, rec *transport.Record, cause error) error {
	return f.ForwardTo(ctx, DerivedName(rec.Topic, f.group), rec, cause)
}

// ForwardTo publishes the record's raw bytes to the given destination with
// provenance headers appended. A failed publish is returned as a
// *PublishError.
func (f *Forwarder) ForwardTo(ctx context.Context, destination string, rec *transport.Record, cause error) error {
	ctx, span := f.tracer.Start(ctx, "dlq.publish",
		trace.WithAttributes(attribute.String("streambind.dlq.destination", destination)))
	defer span.End()

	if cause == nil {
		cause = errors.New("unspecified failure")
	}

	id := failureID()
	out := &transport.Record{
		Topic: destination,
		Key:   rec.Key,
		Value: rec.Value,
		Headers: append(slices.Clone(rec.Headers),
			transport.Header{Key: HeaderOriginalTopic, Value: []byte(rec.Topic)},
			transport.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.FormatInt(int64(rec.Partition), 10))},
			transport.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(rec.Offset, 10))},
			transport.Header{Key: HeaderError, Value: []byte(cause.Error())},
			transport.Header{Key: HeaderFailedAt, Value: []byte(time.Now().UTC().Format(time.RFC3339))},
			transport.Header{Key: HeaderFailureID, Value: []byte(id)},
		),
	}

	if err := f.producer.Produce(ctx, out); err != nil {
		span.RecordError(err)
		f.metrics.RecordDLQ(destination, observability.ResultError)
		f.log.Error("dead-letter publish failed",
			"destination", destination,
			"original_topic", rec.Topic,
			"original_partition", rec.Partition,
			"original_offset", rec.Offset,
			"error", err,
		)
		return &PublishError{Destination: destination, Cause: err}
	}

	f.metrics.RecordDLQ(destination, observability.ResultOK)
	f.log.Warn("record dead-lettered",
		"destination", destination,
		"original_topic", rec.Topic,
		"original_partition", rec.Partition,
		"original_offset", rec.Offset,
		"failure_id", id,
		"cause", cause,
	)
	return nil
}
