// Package schema represents the proto-derived type model — the lock-file
// schema described in spec.md §3/§6 — consumed verbatim by the codec and the
// hint interceptor.
package schema

import (
	"encoding/json"
	"fmt"
)

// PrimitiveType is the closed set of wire primitives spec.md §3 defines.
type PrimitiveType string

// The complete set of primitive types.
const (
	U32       PrimitiveType = "u32"
	U64       PrimitiveType = "u64"
	I32       PrimitiveType = "i32"
	I64       PrimitiveType = "i64"
	Bool      PrimitiveType = "bool"
	Felt252   PrimitiveType = "felt252"
	ByteArray PrimitiveType = "bytearray"
)

func (p PrimitiveType) valid() bool {
	switch p {
	case U32, U64, I32, I64, Bool, Felt252, ByteArray:
		return true
	}
	return false
}

// Kind tags the FieldType sum described in spec.md §3.
type Kind int

// The members of the FieldType sum.
const (
	KindPrimitive Kind = iota
	KindMessage
	KindEnum
	KindOption
	KindArray
)

// FieldType is the tagged sum: Primitive(PrimitiveType) | Message(name) |
// Enum(name) | Option(inner) | Array(inner).
type FieldType struct {
	Kind      Kind
	Primitive PrimitiveType
	// Name holds the referenced Message or Enum name (Kind == KindMessage/KindEnum).
	Name string
	// Inner holds the wrapped type for Option/Array.
	Inner *FieldType
}

// Primitive constructs a FieldType wrapping a primitive.
func Primitive(p PrimitiveType) FieldType {
	return FieldType{Kind: KindPrimitive, Primitive: p}
}

// Message constructs a FieldType referencing a message by name.
func Message(name string) FieldType {
	return FieldType{Kind: KindMessage, Name: name}
}

// Enum constructs a FieldType referencing an enum by name.
func Enum(name string) FieldType {
	return FieldType{Kind: KindEnum, Name: name}
}

// OptionOf wraps inner in an Option.
func OptionOf(inner FieldType) FieldType {
	return FieldType{Kind: KindOption, Inner: &inner}
}

// ArrayOf wraps inner in an Array.
func ArrayOf(inner FieldType) FieldType {
	return FieldType{Kind: KindArray, Inner: &inner}
}

type wireFieldType struct {
	Primitive *PrimitiveType `json:"primitive,omitempty"`
	Message   *string        `json:"message,omitempty"`
	Enum      *string        `json:"enum,omitempty"`
	Option    *FieldType     `json:"option,omitempty"`
	Array     *FieldType     `json:"array,omitempty"`
}

// MarshalJSON renders the tagged union shape specified in spec.md §6.
func (f FieldType) MarshalJSON() ([]byte, error) {
	var w wireFieldType
	switch f.Kind {
	case KindPrimitive:
		p := f.Primitive
		w.Primitive = &p
	case KindMessage:
		w.Message = &f.Name
	case KindEnum:
		w.Enum = &f.Name
	case KindOption:
		w.Option = f.Inner
	case KindArray:
		w.Array = f.Inner
	default:
		return nil, fmt.Errorf("schema: unknown FieldType kind %d", f.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the tagged union shape specified in spec.md §6.
func (f *FieldType) UnmarshalJSON(data []byte) error {
	var w wireFieldType
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Primitive != nil:
		if !w.Primitive.valid() {
			return fmt.Errorf("schema: unknown primitive type %q", *w.Primitive)
		}
		*f = Primitive(*w.Primitive)
	case w.Message != nil:
		*f = Message(*w.Message)
	case w.Enum != nil:
		*f = Enum(*w.Enum)
	case w.Option != nil:
		*f = OptionOf(*w.Option)
	case w.Array != nil:
		*f = ArrayOf(*w.Array)
	default:
		return fmt.Errorf("schema: FieldType object has no recognised tag")
	}
	return nil
}

// Field is a named, typed member of a Message, in declared order.
type Field struct {
	Name string    `json:"name"`
	Ty   FieldType `json:"ty"`
}

// Mapping is one enum variant: its name and its wire number.
type Mapping struct {
	Name string `json:"name"`
	Nb   int32  `json:"nb"`
}

// MethodDeclaration is one RPC method's input/output shape.
type MethodDeclaration struct {
	Input  FieldType `json:"input"`
	Output FieldType `json:"output"`
}

// Service is a named group of methods, keyed by method name (the cheat-code
// selector).
type Service struct {
	Methods map[string]MethodDeclaration `json:"methods"`
}

// Configuration is the schema lock file: enums, messages and services,
// keyed by name. The code generator in package codegen keys every entry by
// its bare local name, without package qualification, so two packages'
// types of the same name cannot both appear. It is produced by the code
// generator and consumed verbatim by the hint interceptor.
type Configuration struct {
	Enums    map[string][]Mapping         `json:"enums"`
	Messages map[string][]Field           `json:"messages"`
	Services map[string]Service           `json:"services"`
}

// New returns an empty, ready-to-populate Configuration.
func New() *Configuration {
	return &Configuration{
		Enums:    map[string][]Mapping{},
		Messages: map[string][]Field{},
		Services: map[string]Service{},
	}
}

// FindMethod locates a method declaration by selector across every service,
// the way the hint interceptor and the standalone oracle client do (spec.md
// §4.3 step 2). Selectors are flat across services (spec.md §9): a selector
// defined twice is a load-time error surfaced by Validate, not a lookup-time
// ambiguity, so the first match is authoritative.
func (c *Configuration) FindMethod(selector string) (MethodDeclaration, bool) {
	for _, svc := range c.Services {
		if m, ok := svc.Methods[selector]; ok {
			return m, true
		}
	}
	return MethodDeclaration{}, false
}
