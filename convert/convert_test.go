package convert

import (
	"errors"
	"net"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{
			name:  "object",
			input: map[string]any{"word": "stream", "count": float64(3)},
		},
		{
			name:  "array",
			input: []any{"a", "b"},
		},
		{
			name:  "string",
			input: "plain",
		},
		{
			name:  "number",
			input: float64(42),
		},
		{
			name:  "null",
			input: nil,
		},
	}

	c := NewJSON()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := c.ToWire(tt.input)
			assert.NoError(t, err)

			back, err := c.FromWire(wire)
			assert.NoError(t, err)
			assert.Equal(t, tt.input, back)
		})
	}
}

func TestJSONFromWireMalformed(t *testing.T) {
	c := NewJSON()

	_, err := c.FromWire([]byte(`{"broken`))
	assert.Error(t, err)

	var convErr *ConversionError
	assert.True(t, errors.As(err, &convErr))
	assert.Equal(t, TypeJSON, convErr.ContentType)
	assert.Equal(t, OpFromWire, convErr.Op)
}

func TestTextToWire(t *testing.T) {
	c := NewText()

	tests := []struct {
		name     string
		input    any
		expected []byte
		wantErr  bool
	}{
		{name: "string", input: "hello", expected: []byte("hello")},
		{name: "bytes", input: []byte("raw"), expected: []byte("raw")},
		{name: "stringer", input: net.IPv4(127, 0, 0, 1), expected: []byte("127.0.0.1")},
		{name: "unsupported", input: struct{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := c.ToWire(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, wire)
		})
	}
}

func TestTextFromWire(t *testing.T) {
	c := NewText()
	v, err := c.FromWire([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, "hello", v.(string))
}

func TestOctetStreamPassthrough(t *testing.T) {
	c := NewOctetStream()

	wire, err := c.ToWire([]byte{0x01, 0x02})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, wire)

	back, err := c.FromWire(wire)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, back.([]byte))
}

func TestOctetStreamRejectsNonBytes(t *testing.T) {
	c := NewOctetStream()
	_, err := c.ToWire("not bytes")
	assert.Error(t, err)
}

func TestNegotiateStripsParameters(t *testing.T) {
	r := NewRegistry()

	c, err := r.Negotiate("application/json; charset=utf-8")
	assert.NoError(t, err)
	assert.Equal(t, TypeJSON, c.ContentType())
}

func TestNegotiateUnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Negotiate("application/avro")
	assert.IsError(t, err, ErrNoConverter)
}

func TestNegotiateMalformedType(t *testing.T) {
	r := NewRegistry()

	_, err := r.Negotiate("")
	assert.Error(t, err)
}

func TestContentTypes(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{TypeJSON, TypeOctetStream, TypeText}, r.ContentTypes())
}
