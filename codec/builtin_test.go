package codec

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestInt64RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input int64
	}{
		{name: "zero", input: 0},
		{name: "positive", input: 1337},
		{name: "negative", input: -42},
		{name: "max", input: 1<<63 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serialized, err := Int64Serializer(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, 8, len(serialized))

			deserialized, err := Int64Deserializer(serialized)
			assert.NoError(t, err)
			assert.Equal(t, tt.input, deserialized)
		})
	}
}

func TestInt64DeserializerRejectsWrongLength(t *testing.T) {
	_, err := Int64Deserializer([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestInt32RoundTrip(t *testing.T) {
	input := int32(-7)
	serialized, err := Int32Serializer(input)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(serialized))

	deserialized, err := Int32Deserializer(serialized)
	assert.NoError(t, err)
	assert.Equal(t, input, deserialized)
}

func TestFloat64RoundTrip(t *testing.T) {
	input := 1337.13
	serialized, err := Float64Serializer(input)
	assert.NoError(t, err)
	deserialized, err := Float64Deserializer(serialized)
	assert.NoError(t, err)
	assert.Equal(t, input, deserialized)
}

func TestFloat64DeserializerRejectsWrongLength(t *testing.T) {
	_, err := Float64Deserializer([]byte{1})
	assert.Error(t, err)
}

func TestBytesIdentity(t *testing.T) {
	input := []byte{0x00, 0xff, 0x10}
	serialized, err := BytesSerializer(input)
	assert.NoError(t, err)
	assert.Equal(t, input, serialized)

	deserialized, err := BytesDeserializer(serialized)
	assert.NoError(t, err)
	assert.Equal(t, input, deserialized)
}
