package streambind

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/streambind/streambind/internal/observability"
	"github.com/streambind/streambind/transport"
)

// Outbound sends records through one outbound binding. It is safe for
// concurrent use.
type Outbound struct {
	binding  Binding
	res      resolution
	producer transport.Producer
	log      *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// Binding returns the binding this sender is attached to.
func (o *Outbound) Binding() string {
	return o.binding.Name
}

// Send encodes key and value per the binding's resolution and publishes the
// record synchronously. The key goes through the key codec always; the value
// goes through the value codec or the content converter, whichever the
// binding resolved to. A nil key stays nil on the wire; a nil value is a
// tombstone.
func (o *Outbound) Send(ctx context.Context, key, value any, headers ...transport.Header) error {
	ctx, span := o.tracer.Start(ctx, "binder.send",
		trace.WithAttributes(
			attribute.String("streambind.binding", o.binding.Name),
			attribute.String("streambind.destination", o.binding.Destination),
		))
	defer span.End()

	var keyBytes []byte
	if key != nil {
		kb, err := o.res.key.Encode(key)
		if err != nil {
			return fmt.Errorf("binding %s: encode key: %w", o.binding.Name, err)
		}
		keyBytes = kb
	}

	var valueBytes []byte
	if value != nil {
		var (
			vb  []byte
			err error
		)
		if o.res.converter != nil {
			vb, err = o.res.converter.ToWire(value)
		} else {
			vb, err = o.res.value.Encode(value)
		}
		if err != nil {
			return fmt.Errorf("binding %s: encode value: %w", o.binding.Name, err)
		}
		valueBytes = vb
	}

	rec := &transport.Record{
		Topic:   o.binding.Destination,
		Key:     keyBytes,
		Value:   valueBytes,
		Headers: headers,
	}
	if err := o.producer.Produce(ctx, rec); err != nil {
		span.RecordError(err)
		return fmt.Errorf("binding %s: %w", o.binding.Name, err)
	}

	o.metrics.RecordOutbound(o.binding.Name)
	o.log.Debug("record sent", "binding", o.binding.Name, "destination", o.binding.Destination)
	return nil
}
