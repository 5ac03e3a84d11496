package codegen

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/reilabs/cairo-hints-go/schema"
)

// UnsupportedConstructError reports a proto construct spec.md §4.1 rejects
// outright: oneof, map, float, double.
type UnsupportedConstructError struct {
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("codegen: %s is not supported", e.Construct)
}

// UnresolvedTypeError reports a fully-qualified proto identifier that does
// not resolve to any message or enum this generator has seen.
type UnresolvedTypeError struct {
	Name string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("codegen: unresolvable type name %q", e.Name)
}

// localName strips the leading package/module qualification from a
// fully-qualified proto identifier (".pkg.Outer.Inner"), keeping only the
// final segment -- the Cairo-side "super::"-free name the serde schema
// stores, per spec.md §4.1's name-resolution rule.
func localName(fqName string) string {
	trimmed := strings.TrimPrefix(fqName, ".")
	parts := strings.Split(trimmed, ".")
	return toUpperCamel(parts[len(parts)-1])
}

// primitiveType maps a scalar FieldDescriptorProto type to its schema
// primitive per spec.md §4.1's type-mapping table. Returns an error for the
// rejected float/double constructs; panics never reach a generator.
func primitiveType(field *descriptorpb.FieldDescriptorProto) (schema.PrimitiveType, error) {
	switch field.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return "", &UnsupportedConstructError{Construct: "float"}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return "", &UnsupportedConstructError{Construct: "double"}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return schema.U32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return schema.U64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return schema.I32, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return schema.I64, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return schema.Bool, nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if strings.Contains(field.GetName(), "felt252_") {
			return schema.Felt252, nil
		}
		return schema.ByteArray, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return schema.ByteArray, nil
	default:
		return "", fmt.Errorf("codegen: field %q is not a scalar type", field.GetName())
	}
}

func isMessageOrEnum(t descriptorpb.FieldDescriptorProto_Type) bool {
	return t == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE ||
		t == descriptorpb.FieldDescriptorProto_TYPE_GROUP ||
		t == descriptorpb.FieldDescriptorProto_TYPE_ENUM
}

// isOptional reports whether field becomes an Option per spec.md §4.1: a
// proto3-optional field always does, so does any optional-label message
// field in either syntax, and so does any optional-label field of a proto2
// file.
func isOptional(field *descriptorpb.FieldDescriptorProto, proto3 bool) bool {
	if field.GetProto3Optional() {
		return true
	}
	if field.GetLabel() != descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL {
		return false
	}
	if field.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		return true
	}
	return !proto3
}

// fieldType resolves field's full schema.FieldType -- its base primitive or
// message/enum reference, wrapped in Array or Option as spec.md §4.1
// requires. known is the set of local message/enum names seen across every
// file, used only to raise UnresolvedTypeError on a dangling reference.
func fieldType(field *descriptorpb.FieldDescriptorProto, proto3 bool, known map[string]bool) (schema.Field, error) {
	repeated := field.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	optional := isOptional(field, proto3)

	var base schema.FieldType
	if isMessageOrEnum(field.GetType()) {
		if field.GetType() == descriptorpb.FieldDescriptorProto_TYPE_GROUP {
			return schema.Field{}, &UnsupportedConstructError{Construct: "group"}
		}
		name := localName(field.GetTypeName())
		if !known[name] {
			return schema.Field{}, &UnresolvedTypeError{Name: field.GetTypeName()}
		}
		if field.GetType() == descriptorpb.FieldDescriptorProto_TYPE_ENUM {
			base = schema.Enum(name)
		} else {
			base = schema.Message(name)
		}
	} else {
		prim, err := primitiveType(field)
		if err != nil {
			return schema.Field{}, err
		}
		base = schema.Primitive(prim)
	}

	ty := base
	switch {
	case repeated:
		ty = schema.ArrayOf(base)
	case optional:
		ty = schema.OptionOf(base)
	}

	return schema.Field{Name: toSnake(field.GetName()), Ty: ty}, nil
}
