// Package runner implements the runner glue from spec.md §4.5: entry code
// synthesis, the single run loop that installs the hint interceptor, gas
// accounting, and PanicResult extraction. The compiled program and its
// entry-point descriptor are treated as opaque inputs produced by the
// Cairo compiler pipeline (spec.md §1); this package only does what spec.md
// §4.5 assigns to the runner itself.
package runner

import "strings"

// BuiltinName is one of the fixed builtin segments an entry function can
// require.
type BuiltinName string

// The five builtins entry code synthesis recognises, in the order they are
// probed for (spec.md §4.5); the final builtin list reverses this order.
const (
	Poseidon   BuiltinName = "poseidon"
	EcOp       BuiltinName = "ec_op"
	Bitwise    BuiltinName = "bitwise"
	RangeCheck BuiltinName = "range_check"
	Pedersen   BuiltinName = "pedersen"
)

var builtinParams = []struct {
	name  BuiltinName
	param string
}{
	{Poseidon, "Poseidon"},
	{EcOp, "EcOp"},
	{Bitwise, "Bitwise"},
	{RangeCheck, "RangeCheck"},
	{Pedersen, "Pedersen"},
}

// firstBuiltinOffset is the fp-relative offset of the first trailing
// builtin stack slot, matching get_function_builtins's current_offset
// starting value.
const firstBuiltinOffset = 3

// FunctionBuiltins decides which of the fixed builtins an entry function
// requires from its parameter type names, and the fp-relative offset each
// one occupies, mirroring get_function_builtins in
// original_source/cairo-oracle-hint-processor/src/lib.rs: builtins are
// probed Poseidon, EcOp, Bitwise, RangeCheck, Pedersen (assigning
// increasing offsets from 3), then the collected list is reversed.
func FunctionBuiltins(paramTypeNames []string) ([]BuiltinName, map[BuiltinName]int) {
	var builtins []BuiltinName
	offsets := map[BuiltinName]int{}
	offset := firstBuiltinOffset
	for _, b := range builtinParams {
		if hasParam(paramTypeNames, b.param) {
			builtins = append(builtins, b.name)
			offsets[b.name] = offset
			offset++
		}
	}
	for i, j := 0, len(builtins)-1; i < j; i, j = i+1, j-1 {
		builtins[i], builtins[j] = builtins[j], builtins[i]
	}
	return builtins, offsets
}

func hasParam(paramTypeNames []string, name string) bool {
	for _, p := range paramTypeNames {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
