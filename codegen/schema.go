package codegen

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/reilabs/cairo-hints-go/schema"
)

// messageIndex is every message descriptor in a FileDescriptorSet, keyed by
// its fully-qualified proto name (".pkg.Outer.Inner"), plus every enum's
// fully-qualified name mapped to nil, built once up front so field type
// resolution can detect map entries and unresolvable references regardless
// of declaration order across files.
type messageIndex map[string]*descriptorpb.DescriptorProto

func indexMessages(files []*descriptorpb.FileDescriptorProto) messageIndex {
	idx := messageIndex{}
	var walk func(prefix string, msgs []*descriptorpb.DescriptorProto)
	walk = func(prefix string, msgs []*descriptorpb.DescriptorProto) {
		for _, m := range msgs {
			fq := prefix + "." + m.GetName()
			idx[fq] = m
			walk(fq, m.GetNestedType())
			for _, e := range m.GetEnumType() {
				idx[fq+"."+e.GetName()] = nil
			}
		}
	}
	for _, f := range files {
		walk("."+f.GetPackage(), f.GetMessageType())
		for _, e := range f.GetEnumType() {
			idx["."+f.GetPackage()+"."+e.GetName()] = nil
		}
	}
	return idx
}

// BuildConfiguration walks fds per spec.md §4.1, producing the schema lock
// file: every message, enum and service across every file, keyed by local
// (package-free) name, flattening nested types into the same flat
// namespace a generated Cairo module's bare references resolve against.
func BuildConfiguration(fds *descriptorpb.FileDescriptorSet) (*schema.Configuration, error) {
	cfg := schema.New()
	messages := indexMessages(fds.GetFile())

	for _, file := range fds.GetFile() {
		proto3 := file.GetSyntax() == "proto3"

		var walkMessages func(prefix string, msgs []*descriptorpb.DescriptorProto) error
		walkMessages = func(prefix string, msgs []*descriptorpb.DescriptorProto) error {
			for _, m := range msgs {
				fq := prefix + "." + m.GetName()
				if m.GetOptions().GetMapEntry() {
					continue
				}
				if len(m.GetOneofDecl()) > 0 {
					return &UnsupportedConstructError{Construct: "oneof"}
				}
				if err := addMessage(cfg, messages, m, fq, proto3); err != nil {
					return err
				}
				if err := walkMessages(fq, m.GetNestedType()); err != nil {
					return err
				}
				if err := addEnums(cfg, m.GetEnumType()); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walkMessages("."+file.GetPackage(), file.GetMessageType()); err != nil {
			return nil, err
		}
		if err := addEnums(cfg, file.GetEnumType()); err != nil {
			return nil, err
		}
		if err := addServices(cfg, messages, file.GetService()); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addMessage(cfg *schema.Configuration, messages messageIndex, m *descriptorpb.DescriptorProto, fq string, proto3 bool) error {
	name := localName(fq)
	if _, exists := cfg.Messages[name]; exists {
		return fmt.Errorf("codegen: duplicate message name %q after flattening", name)
	}

	known := knownNames(messages)
	fields := make([]schema.Field, 0, len(m.GetField()))
	for _, f := range m.GetField() {
		if entry := mapEntryOf(messages, f); entry != nil {
			return &UnsupportedConstructError{Construct: "map"}
		}
		if f.OneofIndex != nil && !f.GetProto3Optional() {
			return &UnsupportedConstructError{Construct: "oneof"}
		}
		field, err := fieldType(f, proto3, known)
		if err != nil {
			return err
		}
		fields = append(fields, field)
	}
	cfg.Messages[name] = fields
	return nil
}

// mapEntryOf returns the nested map-entry descriptor field f references, or
// nil if f is not a map field.
func mapEntryOf(messages messageIndex, f *descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	if f.GetType() != descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		return nil
	}
	entry, ok := messages[f.GetTypeName()]
	if !ok || !entry.GetOptions().GetMapEntry() {
		return nil
	}
	return entry
}

func knownNames(messages messageIndex) map[string]bool {
	known := make(map[string]bool, len(messages))
	for fq := range messages {
		known[localName(fq)] = true
	}
	return known
}

func addEnums(cfg *schema.Configuration, enums []*descriptorpb.EnumDescriptorProto) error {
	for _, e := range enums {
		enumName := toUpperCamel(e.GetName())
		if _, exists := cfg.Enums[enumName]; exists {
			return fmt.Errorf("codegen: duplicate enum name %q after flattening", enumName)
		}

		seenNumbers := map[int32]bool{}
		seenNames := map[string]string{}
		mappings := make([]schema.Mapping, 0, len(e.GetValue()))
		for _, v := range e.GetValue() {
			if seenNumbers[v.GetNumber()] {
				continue // allow_alias: first declaration for a number wins.
			}
			seenNumbers[v.GetNumber()] = true

			variant := stripEnumPrefix(enumName, toUpperCamel(v.GetName()))
			if prior, dup := seenNames[variant]; dup {
				return fmt.Errorf("codegen: enum %s: variant name %q claimed by both %q and %q", enumName, variant, prior, v.GetName())
			}
			seenNames[variant] = v.GetName()

			mappings = append(mappings, schema.Mapping{Name: variant, Nb: v.GetNumber()})
		}
		cfg.Enums[enumName] = mappings
	}
	return nil
}

func addServices(cfg *schema.Configuration, messages messageIndex, services []*descriptorpb.ServiceDescriptorProto) error {
	known := knownNames(messages)
	for _, svc := range services {
		name := toUpperCamel(svc.GetName())
		methods := make(map[string]schema.MethodDeclaration, len(svc.GetMethod()))
		for _, m := range svc.GetMethod() {
			inputName := localName(m.GetInputType())
			outputName := localName(m.GetOutputType())
			if !known[inputName] {
				return &UnresolvedTypeError{Name: m.GetInputType()}
			}
			if !known[outputName] {
				return &UnresolvedTypeError{Name: m.GetOutputType()}
			}
			methods[toSnake(m.GetName())] = schema.MethodDeclaration{
				Input:  schema.Message(inputName),
				Output: schema.Message(outputName),
			}
		}
		cfg.Services[name] = schema.Service{Methods: methods}
	}
	return nil
}
