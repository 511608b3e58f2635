package codec

import (
	"github.com/bytedance/sonic"
)

var json = sonic.ConfigStd

// JSONSerializer returns a JSON serializer for any Go type.
func JSONSerializer[T any]() Serializer[T] {
	return func(v T) ([]byte, error) {
		return json.Marshal(v)
	}
}

// JSONDeserializer returns a JSON deserializer for any Go type.
func JSONDeserializer[T any]() Deserializer[T] {
	return func(data []byte) (T, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return *new(T), err
		}
		return v, nil
	}
}

// JSON returns a SerDe using JSON encoding.
//
// Example:
//
//	serde := codec.JSON[WordCount]()
func JSON[T any]() Serde[T] {
	return Serde[T]{
		Serializer:   JSONSerializer[T](),
		Deserializer: JSONDeserializer[T](),
	}
}
