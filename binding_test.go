package streambind

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/streambind/streambind/transport"
)

func TestParseErrorPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ErrorPolicy
		wantErr bool
	}{
		{"logAndFail", LogAndFail, false},
		{"logAndContinue", LogAndContinue, false},
		{"sendToDlq", SendToDLQ, false},
		{"", LogAndFail, false},
		{"LOGANDFAIL", 0, true},
		{"retry", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseErrorPolicy(tt.in)
			if tt.wantErr {
				assert.IsError(t, err, ErrUnknownPolicy)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorPolicyString(t *testing.T) {
	assert.Equal(t, "logAndFail", LogAndFail.String())
	assert.Equal(t, "logAndContinue", LogAndContinue.String())
	assert.Equal(t, "sendToDlq", SendToDLQ.String())
}

func TestBindingNormalize(t *testing.T) {
	b := Binding{Name: "in", Direction: DirectionInbound, Destination: "t"}
	b = b.normalize(Config{DefaultContentType: "text/plain"})

	assert.Equal(t, "text/plain", b.ContentType)
	assert.Equal(t, transport.StartLatest, b.StartOffset)
	assert.Equal(t, 1, b.Concurrency)

	// Explicit settings survive.
	b = Binding{
		Name:        "in",
		Direction:   DirectionInbound,
		Destination: "t",
		ContentType: "application/octet-stream",
		StartOffset: transport.StartEarliest,
		Concurrency: 4,
	}
	b = b.normalize(Config{DefaultContentType: "text/plain"})

	assert.Equal(t, "application/octet-stream", b.ContentType)
	assert.Equal(t, transport.StartEarliest, b.StartOffset)
	assert.Equal(t, 4, b.Concurrency)
}

func TestBindingNormalizeOutboundStartOffset(t *testing.T) {
	// Start offsets are a consumer concern; outbound bindings keep none.
	b := Binding{Name: "out", Direction: DirectionOutbound, Destination: "t"}
	b = b.normalize(Config{})
	assert.Equal(t, "", b.StartOffset)
}

func TestBindingValidate(t *testing.T) {
	valid := Binding{
		Name:        "in",
		Direction:   DirectionInbound,
		Destination: "words",
		StartOffset: transport.StartEarliest,
		Concurrency: 1,
	}
	assert.NoError(t, valid.validate())

	tests := []struct {
		name   string
		mutate func(*Binding)
	}{
		{"empty name", func(b *Binding) { b.Name = "" }},
		{"bad direction", func(b *Binding) { b.Direction = "sideways" }},
		{"empty destination", func(b *Binding) { b.Destination = "" }},
		{"bad start offset", func(b *Binding) { b.StartOffset = "middle" }},
		{"zero concurrency", func(b *Binding) { b.Concurrency = 0 }},
		{"negative concurrency", func(b *Binding) { b.Concurrency = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			assert.Error(t, b.validate())
		})
	}
}
