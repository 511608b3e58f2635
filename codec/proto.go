package codec

import (
	"google.golang.org/protobuf/proto"
)

// ProtoSerializer returns a protobuf serializer for any proto.Message type.
//
// Example:
//
//	serializer := codec.ProtoSerializer[*pb.User]()
func ProtoSerializer[T proto.Message]() Serializer[T] {
	return func(v T) ([]byte, error) {
		return proto.Marshal(v)
	}
}

// ProtoDeserializer returns a protobuf deserializer that uses reflection to
// create new message instances.
func ProtoDeserializer[T proto.Message]() Deserializer[T] {
	return func(data []byte) (T, error) {
		var zero T
		msg := zero.ProtoReflect().New().Interface().(T)
		if err := proto.Unmarshal(data, msg); err != nil {
			return zero, err
		}
		return msg, nil
	}
}

// Proto returns a SerDe using protobuf encoding.
func Proto[T proto.Message]() Serde[T] {
	return Serde[T]{
		Serializer:   ProtoSerializer[T](),
		Deserializer: ProtoDeserializer[T](),
	}
}
