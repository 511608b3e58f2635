package codec

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

type wordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

func TestJSONRoundTrip(t *testing.T) {
	serde := JSON[wordCount]()

	input := wordCount{Word: "stream", Count: 3}
	serialized, err := serde.Serializer(input)
	assert.NoError(t, err)

	deserialized, err := serde.Deserializer(serialized)
	assert.NoError(t, err)
	assert.Equal(t, input, deserialized)
}

func TestJSONAnyDecodesObjectsToMaps(t *testing.T) {
	serde := JSON[any]()

	deserialized, err := serde.Deserializer([]byte(`{"word":"stream","count":3}`))
	assert.NoError(t, err)

	m, ok := deserialized.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "stream", m["word"].(string))
}

func TestJSONDeserializerRejectsMalformed(t *testing.T) {
	serde := JSON[wordCount]()
	_, err := serde.Deserializer([]byte(`{"word":`))
	assert.Error(t, err)
}
