package convert

import (
	"fmt"
)

type octetConverter struct{}

// NewOctetStream returns the application/octet-stream converter, a raw byte
// passthrough. ToWire rejects anything that is not a byte slice.
func NewOctetStream() Converter {
	return octetConverter{}
}

func (octetConverter) ContentType() string {
	return TypeOctetStream
}

func (octetConverter) ToWire(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, &ConversionError{
			ContentType: TypeOctetStream,
			Op:          OpToWire,
			Cause:       fmt.Errorf("cannot convert value of type %T to raw bytes", v),
		}
	}
	return b, nil
}

func (octetConverter) FromWire(data []byte) (any, error) {
	return data, nil
}
