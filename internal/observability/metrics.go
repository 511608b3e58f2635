// Package observability carries the binder's prometheus collectors and
// OpenTelemetry tracer. Everything here is optional at runtime: a nil
// *Metrics records nothing, and the tracer is a noop unless the host process
// installed a provider.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome classifies what happened to one inbound record.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeDeadLettered Outcome = "dead_lettered"
	OutcomeFailed       Outcome = "failed"
)

// Result classifies a dead-letter publish attempt.
type Result string

const (
	ResultOK    Result = "ok"
	ResultError Result = "error"
)

// Metrics holds the binder's counters.
type Metrics struct {
	Records  *prometheus.CounterVec
	Outbound *prometheus.CounterVec
	DLQ      *prometheus.CounterVec
}

// NewMetrics builds the counters and registers them when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streambind",
			Subsystem: "binder",
			Name:      "records_total",
			Help:      "Inbound records by binding and outcome.",
		}, []string{"binding", "outcome"}),
		Outbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streambind",
			Subsystem: "binder",
			Name:      "outbound_records_total",
			Help:      "Records published through outbound bindings.",
		}, []string{"binding"}),
		DLQ: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streambind",
			Subsystem: "dlq",
			Name:      "publishes_total",
			Help:      "Dead-letter publish attempts by destination and result.",
		}, []string{"destination", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Records, m.Outbound, m.DLQ)
	}
	return m
}

// RecordInbound counts one inbound record. Safe on a nil receiver.
func (m *Metrics) RecordInbound(binding string, outcome Outcome) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(binding, string(outcome)).Inc()
}

// RecordOutbound counts one outbound record. Safe on a nil receiver.
func (m *Metrics) RecordOutbound(binding string) {
	if m == nil {
		return
	}
	m.Outbound.WithLabelValues(binding).Inc()
}

// RecordDLQ counts one dead-letter publish attempt. Safe on a nil receiver.
func (m *Metrics) RecordDLQ(destination string, result Result) {
	if m == nil {
		return
	}
	m.DLQ.WithLabelValues(destination, string(result)).Inc()
}
