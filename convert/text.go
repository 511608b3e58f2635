package convert

import (
	"fmt"
)

type textConverter struct{}

// NewText returns the text/plain converter. ToWire accepts strings, byte
// slices and fmt.Stringer values; FromWire yields a string.
func NewText() Converter {
	return textConverter{}
}

func (textConverter) ContentType() string {
	return TypeText
}

func (textConverter) ToWire(v any) ([]byte, error) {
	switch t := v.(type) {
	case string:
		return []byte(t), nil
	case []byte:
		return t, nil
	case fmt.Stringer:
		return []byte(t.String()), nil
	default:
		return nil, &ConversionError{
			ContentType: TypeText,
			Op:          OpToWire,
			Cause:       fmt.Errorf("cannot convert value of type %T to text", v),
		}
	}
}

func (textConverter) FromWire(data []byte) (any, error) {
	return string(data), nil
}
