package streambind

import (
	"log/slog"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/streambind/streambind/codec"
	"github.com/streambind/streambind/convert"
	"github.com/streambind/streambind/transport"
)

// Option is a function that configures a Binder
type Option func(*Binder)

// WithLog sets the logger for the binder
var WithLog = func(log *slog.Logger) Option {
	return func(b *Binder) {
		b.log = log
	}
}

// WithLogr sets the logger from a logr.Logger, for binders embedded in
// logr-based services
var WithLogr = func(log logr.Logger) Option {
	return func(b *Binder) {
		b.log = slog.New(logr.ToSlogHandler(log))
	}
}

// WithTransport injects the transport. The binder takes ownership and closes
// it on Close. Without this option a Kafka transport is built from the
// configured brokers.
var WithTransport = func(t transport.Transport) Option {
	return func(b *Binder) {
		b.transport = t
	}
}

// WithCodecs replaces the codec registry. The default registry carries the
// builtin codecs.
var WithCodecs = func(r *codec.Registry) Option {
	return func(b *Binder) {
		b.codecs = r
	}
}

// WithConverters replaces the content converter registry. The default
// registry carries the builtin converters.
var WithConverters = func(r *convert.Registry) Option {
	return func(b *Binder) {
		b.converters = r
	}
}

// WithMetrics registers the binder's prometheus collectors with reg
var WithMetrics = func(reg prometheus.Registerer) Option {
	return func(b *Binder) {
		b.promReg = reg
	}
}

// WithClientID sets the client id the binder uses when it builds its own
// Kafka transport
var WithClientID = func(id string) Option {
	return func(b *Binder) {
		b.clientID = id
	}
}

// WithMaxPollRecords sets the maximum number of records to poll at once
var WithMaxPollRecords = func(n int) Option {
	return func(b *Binder) {
		b.maxPollRecords = n
	}
}
