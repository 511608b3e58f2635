package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the binder's tracer from the global provider. Without an
// installed provider this is a noop.
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/streambind/streambind")
}
