package streambind

import (
	"fmt"

	"github.com/streambind/streambind/codec"
	"github.com/streambind/streambind/convert"
)

// resolution is the codec/converter assignment computed for one binding at
// startup. Exactly one of value and converter is set; the converter is never
// set for keys.
type resolution struct {
	key         codec.Codec
	value       codec.Codec
	converter   convert.Converter
	contentType string
}

// resolve applies the serde resolution policy to one binding. It is a pure
// lookup over immutable configuration; any failure here is fatal before a
// single record flows.
//
// Keys: per-binding codec, else process default, else the identity bytes
// codec. Key bytes belong to the transport, so the content converter is
// never consulted for them, regardless of the native flags.
//
// Values with native encoding/decoding enabled: per-binding codec, else
// process default, else ErrCodecRequired. With native disabled (the
// default): the content-type converter; codec identifiers are not consulted.
func resolve(b Binding, cfg Config, codecs *codec.Registry, converters *convert.Registry) (resolution, error) {
	var res resolution

	keyName := b.KeyCodec
	if keyName == "" {
		keyName = cfg.DefaultKeyCodec
	}
	if keyName == "" {
		keyName = codec.NameBytes
	}
	key, err := codecs.Resolve(keyName)
	if err != nil {
		return res, fmt.Errorf("binding %s: key codec: %w", b.Name, err)
	}
	res.key = key

	native := b.UseNativeDecoding
	if b.Direction == DirectionOutbound {
		native = b.UseNativeEncoding
	}

	if native {
		valueName := b.ValueCodec
		if valueName == "" {
			valueName = cfg.DefaultValueCodec
		}
		if valueName == "" {
			return res, fmt.Errorf("binding %s: %w", b.Name, ErrCodecRequired)
		}
		value, err := codecs.Resolve(valueName)
		if err != nil {
			return res, fmt.Errorf("binding %s: value codec: %w", b.Name, err)
		}
		res.value = value
		return res, nil
	}

	contentType := b.ContentType
	if contentType == "" {
		contentType = cfg.DefaultContentType
	}
	if contentType == "" {
		contentType = convert.TypeJSON
	}
	conv, err := converters.Negotiate(contentType)
	if err != nil {
		return res, fmt.Errorf("binding %s: %w", b.Name, err)
	}
	res.converter = conv
	res.contentType = conv.ContentType()
	return res, nil
}
