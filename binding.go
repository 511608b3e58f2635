package streambind

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/streambind/streambind/transport"
)

// Direction says which way records flow through a binding.
type Direction string

const (
	// DirectionInbound consumes records from the destination.
	DirectionInbound Direction = "inbound"
	// DirectionOutbound produces records to the destination.
	DirectionOutbound Direction = "outbound"
)

// Binding declares one named attachment between application code and a
// transport destination. Bindings are immutable once the binder is built.
type Binding struct {
	// Name identifies the binding; handlers and senders attach by name.
	Name string `yaml:"name"`

	Direction Direction `yaml:"direction"`

	// Destination is the transport topic.
	Destination string `yaml:"destination"`

	// ContentType selects the conversion fallback when native codecs are
	// disabled. Defaults to the process default, then application/json.
	ContentType string `yaml:"contentType"`

	// UseNativeEncoding routes outbound values through a codec instead of
	// the content-type converter.
	UseNativeEncoding bool `yaml:"useNativeEncoding"`

	// UseNativeDecoding routes inbound values through a codec instead of
	// the content-type converter.
	UseNativeDecoding bool `yaml:"useNativeDecoding"`

	// KeyCodec and ValueCodec name codecs in the codec registry and take
	// precedence over the process defaults.
	KeyCodec   string `yaml:"keyCodec"`
	ValueCodec string `yaml:"valueCodec"`

	// DLQName overrides the derived dead-letter destination.
	DLQName string `yaml:"dlqName"`

	// StartOffset positions a fresh consumer group: earliest or latest
	// (the default). Consumer bindings only.
	StartOffset string `yaml:"startOffset"`

	// Concurrency is the number of poll loops for this binding. Consumer
	// bindings only, default 1.
	Concurrency int `yaml:"concurrency"`
}

// normalize fills the defaulted fields from the process config.
func (b Binding) normalize(cfg Config) Binding {
	if b.ContentType == "" {
		b.ContentType = cfg.DefaultContentType
	}
	if b.Direction == DirectionInbound {
		if b.StartOffset == "" {
			b.StartOffset = transport.StartLatest
		}
		if b.Concurrency == 0 {
			b.Concurrency = 1
		}
	}
	return b
}

func (b Binding) validate() error {
	var err error
	if b.Name == "" {
		err = multierr.Append(err, errors.New("binding name must not be empty"))
	}
	if b.Direction != DirectionInbound && b.Direction != DirectionOutbound {
		err = multierr.Append(err, fmt.Errorf("binding %s: direction must be %q or %q, got %q",
			b.Name, DirectionInbound, DirectionOutbound, b.Direction))
	}
	if b.Destination == "" {
		err = multierr.Append(err, fmt.Errorf("binding %s: destination must not be empty", b.Name))
	}
	if b.Direction == DirectionInbound {
		if b.StartOffset != transport.StartEarliest && b.StartOffset != transport.StartLatest {
			err = multierr.Append(err, fmt.Errorf("binding %s: start offset must be %q or %q, got %q",
				b.Name, transport.StartEarliest, transport.StartLatest, b.StartOffset))
		}
		if b.Concurrency < 1 {
			err = multierr.Append(err, fmt.Errorf("binding %s: concurrency must be at least 1", b.Name))
		}
	}
	return err
}

// ErrorPolicy is the process-wide reaction to inbound deserialization
// failures. There is deliberately no per-binding override.
type ErrorPolicy int

const (
	// LogAndFail halts the topology instance on the failing record. This is
	// the default.
	LogAndFail ErrorPolicy = iota
	// LogAndContinue logs the failing record and skips it.
	LogAndContinue
	// SendToDLQ forwards the raw record to the dead-letter destination and
	// continues. A failed forward escalates to LogAndFail for that record.
	SendToDLQ
)

// Configuration strings for the error policies.
const (
	policyLogAndFail     = "logAndFail"
	policyLogAndContinue = "logAndContinue"
	policySendToDLQ      = "sendToDlq"
)

// ParseErrorPolicy maps a configuration string to its policy. The empty
// string selects LogAndFail.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case policyLogAndFail, "":
		return LogAndFail, nil
	case policyLogAndContinue:
		return LogAndContinue, nil
	case policySendToDLQ:
		return SendToDLQ, nil
	default:
		return LogAndFail, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p ErrorPolicy) String() string {
	switch p {
	case LogAndContinue:
		return policyLogAndContinue
	case SendToDLQ:
		return policySendToDLQ
	default:
		return policyLogAndFail
	}
}
