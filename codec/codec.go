// Package codec implements the protobuf-message-shaped JSON <-> Felt wire
// codec from spec.md §4.2, grounded byte-for-byte in
// cairo-proto-serde/src/lib.rs's serialize_cairo_serde/deserialize_cairo_serde.
package codec

import (
	"fmt"
	"strings"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
)

// Serialize renders a decoded JSON value as a flat sequence of Felts,
// following ty and, for Message/Enum references, cfg.
func Serialize(cfg *schema.Configuration, ty schema.FieldType, value any) ([]felt.Felt, error) {
	switch ty.Kind {
	case schema.KindPrimitive:
		return serializePrimitive(ty.Primitive, value)

	case schema.KindMessage:
		fields, ok := cfg.Messages[ty.Name]
		if !ok {
			return nil, oracleerr.New(oracleerr.CodecMismatch, "", "serialize", fmt.Sprintf("message %q not found in configuration", ty.Name), nil)
		}
		obj, err := asObject(value)
		if err != nil {
			return nil, wrapMessageErr(ty.Name, err)
		}
		var out []felt.Felt
		for _, f := range fields {
			fv, ok := obj[f.Name]
			if !ok {
				// Fall back to the name without its "felt252_" prefix, the way
				// generated protobuf oneof accessors do.
				fv, ok = obj[strings.TrimPrefix(f.Name, "felt252_")]
			}
			if !ok {
				return nil, oracleerr.New(oracleerr.CodecMismatch, "", "serialize", fmt.Sprintf("field %q not found in message %q", f.Name, ty.Name), nil)
			}
			encoded, err := Serialize(cfg, f.Ty, fv)
			if err != nil {
				return nil, err
			}
			out = append(out, encoded...)
		}
		return out, nil

	case schema.KindEnum:
		return serializePrimitive(schema.I32, value)

	case schema.KindOption:
		// Inverted tag per spec.md §3: 0 means present, 1 means absent.
		if value == nil {
			return serializePrimitive(schema.U64, uint64(1))
		}
		tag, err := serializePrimitive(schema.U64, uint64(0))
		if err != nil {
			return nil, err
		}
		inner, err := Serialize(cfg, *ty.Inner, value)
		if err != nil {
			return nil, err
		}
		return append(tag, inner...), nil

	case schema.KindArray:
		arr, err := asArraySlice(value)
		if err != nil {
			return nil, wrapMessageErr("array", err)
		}
		out, err := serializePrimitive(schema.U64, uint64(len(arr)))
		if err != nil {
			return nil, err
		}
		for _, elem := range arr {
			encoded, err := Serialize(cfg, *ty.Inner, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, encoded...)
		}
		return out, nil

	default:
		return nil, oracleerr.New(oracleerr.CodecMismatch, "", "serialize", fmt.Sprintf("unknown field type kind %d", ty.Kind), nil)
	}
}

// Deserialize consumes data from the front and decodes a JSON value
// following ty, returning the decoded value and the unconsumed remainder.
func Deserialize(cfg *schema.Configuration, ty schema.FieldType, data []felt.Felt) (any, []felt.Felt, error) {
	switch ty.Kind {
	case schema.KindPrimitive:
		return deserializePrimitive(ty.Primitive, data)

	case schema.KindMessage:
		fields, ok := cfg.Messages[ty.Name]
		if !ok {
			return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", fmt.Sprintf("message %q not found in configuration", ty.Name), nil)
		}
		obj := make(map[string]any, len(fields))
		rest := data
		for _, f := range fields {
			var v any
			var err error
			v, rest, err = Deserialize(cfg, f.Ty, rest)
			if err != nil {
				return nil, nil, err
			}
			obj[f.Name] = v
		}
		return obj, rest, nil

	case schema.KindEnum:
		return deserializePrimitive(schema.I32, data)

	case schema.KindOption:
		tag, rest, err := deserializePrimitive(schema.U64, data)
		if err != nil {
			return nil, nil, err
		}
		tagU, _ := tag.(uint64)
		if tagU == 0 {
			return Deserialize(cfg, *ty.Inner, rest)
		}
		return nil, rest, nil

	case schema.KindArray:
		lenVal, rest, err := deserializePrimitive(schema.U64, data)
		if err != nil {
			return nil, nil, err
		}
		n, _ := lenVal.(uint64)
		out := make([]any, 0, n)
		for i := uint64(0); i < n; i++ {
			var v any
			v, rest, err = Deserialize(cfg, *ty.Inner, rest)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, v)
		}
		return out, rest, nil

	default:
		return nil, nil, oracleerr.New(oracleerr.CodecMismatch, "", "deserialize", fmt.Sprintf("unknown field type kind %d", ty.Kind), nil)
	}
}

func wrapMessageErr(name string, err error) error {
	return oracleerr.New(oracleerr.CodecMismatch, "", "serialize", fmt.Sprintf("message %q", name), err)
}
