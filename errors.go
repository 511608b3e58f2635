package streambind

import (
	"errors"
	"fmt"
)

var (
	// ErrCodecRequired is returned at startup when a binding enables native
	// encoding or decoding but neither the binding nor the process default
	// names a value codec.
	ErrCodecRequired = errors.New("streambind: value codec required when native codec is enabled")

	// ErrUnknownPolicy is returned for error policy strings other than
	// logAndContinue, logAndFail and sendToDlq.
	ErrUnknownPolicy = errors.New("streambind: unknown error policy")

	// ErrUnknownBinding is returned when attaching to a binding name the
	// configuration does not declare.
	ErrUnknownBinding = errors.New("streambind: unknown binding")

	// ErrGroupRequired is returned at startup when inbound bindings or
	// derived dead-letter naming need a consumer group and none is set.
	ErrGroupRequired = errors.New("streambind: consumer group required")

	// ErrTransportRequired is returned at startup when neither WithTransport
	// nor broker addresses are configured.
	ErrTransportRequired = errors.New("streambind: transport or brokers required")

	// ErrBinderClosed rejects operations after Close.
	ErrBinderClosed = errors.New("streambind: binder closed")
)

// DeserializationError reports a record whose key or value could not be
// decoded. It is routed according to the process-wide error policy and never
// unwinds past the record boundary except under logAndFail or a failed
// dead-letter publish.
type DeserializationError struct {
	Binding   string
	Topic     string
	Partition int32
	Offset    int64
	Cause     error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %s/%d@%d (binding %s): %v", e.Topic, e.Partition, e.Offset, e.Binding, e.Cause)
}

func (e *DeserializationError) Unwrap() error {
	return e.Cause
}
