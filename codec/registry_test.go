package codec

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRegistryResolvesBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{NameBytes, NameString, NameInt32, NameInt64, NameFloat64, NameJSON} {
		c, err := r.Resolve(name)
		assert.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}

func TestRegistryUnknownCodec(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("avro")
	assert.IsError(t, err, ErrUnknownCodec)
}

func TestRegistryRegisterCustom(t *testing.T) {
	r := NewRegistry()

	assert.NoError(t, r.Register(FromSerde("wordcount", JSON[wordCount]())))

	c, err := r.Resolve("wordcount")
	assert.NoError(t, err)

	encoded, err := c.Encode(wordCount{Word: "w", Count: 1})
	assert.NoError(t, err)

	decoded, err := c.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, wordCount{Word: "w", Count: 1}, decoded.(wordCount))
}

func TestRegistryRejectsUnnamed(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(FromSerde("", String)))
	assert.Error(t, r.Register(nil))
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	assert.Equal(t, []string{NameBytes, NameFloat64, NameInt32, NameInt64, NameJSON, NameString}, names)
}

func TestErasedCodecRejectsWrongType(t *testing.T) {
	c := FromSerde(NameString, String)
	_, err := c.Encode(42)
	assert.Error(t, err)
}
