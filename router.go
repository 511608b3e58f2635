package streambind

import (
	"context"
	"log/slog"

	"github.com/streambind/streambind/dlq"
	"github.com/streambind/streambind/internal/observability"
	"github.com/streambind/streambind/transport"
)

// errorRouter applies the process-wide error policy to inbound
// deserialization failures. Routing runs synchronously on the owning consumer
// goroutine: a record's failure is fully resolved before the loop advances.
type errorRouter struct {
	policy    ErrorPolicy
	forwarder *dlq.Forwarder
	log       *slog.Logger
	metrics   *observability.Metrics
}

// route handles one failed record. A nil return means the record is dealt
// with and the loop may continue; an error halts the loop.
func (r *errorRouter) route(ctx context.Context, dlqName string, rec *transport.Record, derr *DeserializationError) error {
	switch r.policy {
	case LogAndContinue:
		r.log.Warn("skipping record after deserialization failure",
			"binding", derr.Binding,
			"topic", derr.Topic,
			"partition", derr.Partition,
			"offset", derr.Offset,
			"error", derr.Cause,
		)
		r.metrics.RecordInbound(derr.Binding, observability.OutcomeSkipped)
		return nil

	case SendToDLQ:
		if err := r.forwarder.ForwardTo(ctx, dlqName, rec, derr.Cause); err != nil {
			// The record is neither processed nor dead-lettered; halting is
			// the only way to not lose it.
			r.log.Error("dead-letter publish failed, halting",
				"binding", derr.Binding,
				"destination", dlqName,
				"error", err,
			)
			r.metrics.RecordInbound(derr.Binding, observability.OutcomeFailed)
			return err
		}
		r.metrics.RecordInbound(derr.Binding, observability.OutcomeDeadLettered)
		return nil

	default: // LogAndFail
		r.log.Error("halting on deserialization failure",
			"binding", derr.Binding,
			"topic", derr.Topic,
			"partition", derr.Partition,
			"offset", derr.Offset,
			"error", derr.Cause,
		)
		r.metrics.RecordInbound(derr.Binding, observability.OutcomeFailed)
		return derr
	}
}
