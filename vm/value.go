package vm

import "github.com/reilabs/cairo-hints-go/felt"

// Value is a VM memory cell's content: either a Felt or a Relocatable, the
// "MaybeRelocatable" distinction every Cairo VM memory cell carries.
type Value struct {
	relocatable bool
	rel         Relocatable
	f           felt.Felt
}

// FeltValue wraps a Felt as a cell value.
func FeltValue(f felt.Felt) Value {
	return Value{f: f}
}

// RelocatableValue wraps a Relocatable as a cell value.
func RelocatableValue(r Relocatable) Value {
	return Value{relocatable: true, rel: r}
}

// IsRelocatable reports whether the value holds a Relocatable rather than a
// Felt.
func (v Value) IsRelocatable() bool {
	return v.relocatable
}

// Felt returns the wrapped Felt, or an error if v holds a Relocatable.
func (v Value) Felt() (felt.Felt, error) {
	if v.relocatable {
		return felt.Zero(), errNotFelt(v.rel)
	}
	return v.f, nil
}

// Relocatable returns the wrapped Relocatable, or an error if v holds a Felt.
func (v Value) Relocatable() (Relocatable, error) {
	if !v.relocatable {
		return Relocatable{}, errNotRelocatable(v.f)
	}
	return v.rel, nil
}
