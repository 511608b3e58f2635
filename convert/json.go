package convert

import (
	"github.com/bytedance/sonic"
)

var json = sonic.ConfigStd

type jsonConverter struct{}

// NewJSON returns the application/json converter. FromWire decodes into the
// generic JSON representation: objects become map[string]any, arrays []any.
func NewJSON() Converter {
	return jsonConverter{}
}

func (jsonConverter) ContentType() string {
	return TypeJSON
}

func (jsonConverter) ToWire(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &ConversionError{ContentType: TypeJSON, Op: OpToWire, Cause: err}
	}
	return data, nil
}

func (jsonConverter) FromWire(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &ConversionError{ContentType: TypeJSON, Op: OpFromWire, Cause: err}
	}
	return v, nil
}
