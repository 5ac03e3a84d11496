package codec

import (
	"fmt"
	"strings"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
)

// chunkSize is the number of payload bytes a Cairo byte-array word packs,
// leaving the felt's top byte as implicit zero padding.
const chunkSize = 31

func serializePrimitive(ty schema.PrimitiveType, value any) ([]felt.Felt, error) {
	switch ty {
	case schema.Felt252:
		s, err := asString(value)
		if err != nil {
			return nil, wrapCodec(ty, err)
		}
		f, err := felt.FromHexOrDecimal(s)
		if err != nil {
			return nil, wrapCodec(ty, err)
		}
		return []felt.Felt{f}, nil

	case schema.U64, schema.U32:
		u, err := asUint64(value)
		if err != nil {
			return nil, wrapCodec(ty, err)
		}
		return []felt.Felt{felt.FromUint64(u)}, nil

	case schema.I32, schema.I64:
		i, err := asInt64(value)
		if err != nil {
			return nil, wrapCodec(ty, err)
		}
		return []felt.Felt{felt.FromInt64(i)}, nil

	case schema.Bool:
		b, err := asBool(value)
		if err != nil {
			return nil, wrapCodec(ty, err)
		}
		if b {
			return []felt.Felt{felt.FromUint64(1)}, nil
		}
		return []felt.Felt{felt.FromUint64(0)}, nil

	case schema.ByteArray:
		return serializeByteArray(value)

	default:
		return nil, oracleerr.New(oracleerr.CodecMismatch, "", "serialize", fmt.Sprintf("unknown primitive type %q", ty), nil)
	}
}

// serializeByteArray packs a UTF-8 string into the Cairo byte-array wire
// shape: a count of full 31-byte words, the words themselves (most
// significant byte first), a zero-padded pending word, and the pending
// word's length in bytes.
func serializeByteArray(value any) ([]felt.Felt, error) {
	s, err := asString(value)
	if err != nil {
		return nil, wrapCodec(schema.ByteArray, err)
	}
	b := []byte(s)

	fullWords := len(b) / chunkSize
	out := make([]felt.Felt, 0, fullWords+3)
	out = append(out, felt.FromUint64(uint64(fullWords)))

	for i := 0; i < len(b); i += chunkSize {
		end := i + chunkSize
		if end > len(b) {
			end = len(b)
		}
		out = append(out, felt.FromBytesBESlice(b[i:end]))
	}

	pendingLen := len(b) % chunkSize
	if pendingLen == 0 {
		out = append(out, felt.Zero())
	}
	out = append(out, felt.FromUint64(uint64(pendingLen)))
	return out, nil
}

// deserializePrimitive consumes the felts for a single primitive field from
// the front of data and returns the decoded JSON value and the remainder.
func deserializePrimitive(ty schema.PrimitiveType, data []felt.Felt) (any, []felt.Felt, error) {
	if ty == schema.ByteArray {
		return deserializeByteArray(data)
	}
	if len(data) == 0 {
		return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", fmt.Sprintf("not enough felts for %s", ty), nil)
	}
	head, rest := data[0], data[1:]

	switch ty {
	case schema.Felt252:
		return head.ToHex(), rest, nil
	case schema.U64:
		u, err := head.ToUint64()
		if err != nil {
			return nil, nil, wrapCodec(ty, err)
		}
		return u, rest, nil
	case schema.U32:
		u, err := head.ToUint32()
		if err != nil {
			return nil, nil, wrapCodec(ty, err)
		}
		return u, rest, nil
	case schema.I64:
		i, err := head.ToInt64()
		if err != nil {
			return nil, nil, wrapCodec(ty, err)
		}
		return i, rest, nil
	case schema.I32:
		i, err := head.ToInt32()
		if err != nil {
			return nil, nil, wrapCodec(ty, err)
		}
		return i, rest, nil
	case schema.Bool:
		u, err := head.ToUint64()
		if err != nil {
			return nil, nil, wrapCodec(ty, err)
		}
		switch u {
		case 0:
			return false, rest, nil
		case 1:
			return true, rest, nil
		default:
			return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", fmt.Sprintf("felt %s is not a valid bool", head.String()), nil)
		}
	default:
		return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", fmt.Sprintf("unknown primitive type %q", ty), nil)
	}
}

// deserializeByteArray is the inverse of serializeByteArray: the leading
// felt names how many full words follow, then a zero-padded pending word,
// then the pending word's length.
func deserializeByteArray(data []felt.Felt) (any, []felt.Felt, error) {
	if len(data) == 0 {
		return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", "not enough felts for byte_array", nil)
	}
	fullWords, err := data[0].ToUint64()
	if err != nil {
		return nil, nil, wrapCodec(schema.ByteArray, err)
	}
	data = data[1:]

	if uint64(len(data)) < fullWords+2 {
		return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", "truncated byte_array", nil)
	}

	words := data[:fullWords]
	pendingWord := data[fullWords]
	pendingLenFelt, err := data[fullWords+1].ToUint64()
	if err != nil {
		return nil, nil, wrapCodec(schema.ByteArray, err)
	}
	rest := data[fullWords+2:]

	var buf strings.Builder
	for _, w := range words {
		b := w.ToBytesBE()
		buf.Write(b[32-chunkSize:])
	}
	pb := pendingWord.ToBytesBE()
	trim := 32 - int(pendingLenFelt)
	if trim < 0 || trim > 32 {
		return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", "invalid byte_array pending length", nil)
	}
	buf.Write(pb[trim:])

	return buf.String(), rest, nil
}

func wrapCodec(ty schema.PrimitiveType, err error) error {
	return oracleerr.New(oracleerr.CodecMismatch, "", "codec", fmt.Sprintf("primitive %s", ty), err)
}
