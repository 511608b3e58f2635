package streambind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/streambind/streambind/internal/observability"
	"github.com/streambind/streambind/transport"
)

// inboundLoop is one poll loop of one inbound binding. Decoding, error
// routing and handler invocation all run on this goroutine; a record is
// fully resolved (processed, skipped or dead-lettered) before the next one
// starts.
type inboundLoop struct {
	binding  Binding
	consumer transport.Consumer
	handler  Handler
	res      resolution
	router   *errorRouter
	dlqName  string
	log      *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

func (l *inboundLoop) run(ctx context.Context) error {
	defer l.consumer.Close()

	for {
		recs, err := l.consumer.Poll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, transport.ErrClosed) {
				return nil
			}
			return fmt.Errorf("binding %s: poll: %w", l.binding.Name, err)
		}

		for _, rec := range recs {
			if err := l.process(ctx, rec); err != nil {
				return err
			}
			// Mark after the record is resolved; skipped and dead-lettered
			// records advance the group too.
			l.consumer.Mark(rec)
		}
	}
}

func (l *inboundLoop) process(ctx context.Context, rec *transport.Record) error {
	ctx, span := l.tracer.Start(ctx, "binder.process",
		trace.WithAttributes(
			attribute.String("streambind.binding", l.binding.Name),
			attribute.String("streambind.topic", rec.Topic),
			attribute.Int64("streambind.offset", rec.Offset),
		))
	defer span.End()

	key, value, derr := l.decode(rec)
	if derr != nil {
		span.RecordError(derr)
		return l.router.route(ctx, l.dlqName, rec, derr)
	}

	msg := Message{
		Binding:   l.binding.Name,
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Timestamp: rec.Timestamp,
		Key:       key,
		Value:     value,
		Headers:   rec.Headers,
	}

	if err := l.handler.Handle(ctx, msg); err != nil {
		// Handler errors are not routed; the binder has no generic recovery
		// around application code.
		span.RecordError(err)
		l.metrics.RecordInbound(l.binding.Name, observability.OutcomeFailed)
		return fmt.Errorf("binding %s: handler: %w", l.binding.Name, err)
	}

	l.metrics.RecordInbound(l.binding.Name, observability.OutcomeOK)
	return nil
}

// decode produces the handler-facing key and value. Failures come back as a
// *DeserializationError for the router; the raw record stays untouched for
// dead-letter forwarding.
func (l *inboundLoop) decode(rec *transport.Record) (any, any, *DeserializationError) {
	var key any
	if rec.Key != nil {
		k, err := l.res.key.Decode(rec.Key)
		if err != nil {
			return nil, nil, l.deserializationError(rec, fmt.Errorf("decode key: %w", err))
		}
		key = k
	}

	var value any
	if rec.Value != nil {
		var (
			v   any
			err error
		)
		if l.res.converter != nil {
			v, err = l.res.converter.FromWire(rec.Value)
		} else {
			v, err = l.res.value.Decode(rec.Value)
		}
		if err != nil {
			return nil, nil, l.deserializationError(rec, fmt.Errorf("decode value: %w", err))
		}
		value = v
	}

	return key, value, nil
}

func (l *inboundLoop) deserializationError(rec *transport.Record, cause error) *DeserializationError {
	return &DeserializationError{
		Binding:   l.binding.Name,
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Cause:     cause,
	}
}
