package runner

import (
	"fmt"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/vm"
)

// Arg is one entry-function argument: a single Felt, or an array of Felts
// laid down as a (ptr, len) pair into a freshly allocated segment (spec.md
// §4.5 "(iv)").
type Arg struct {
	array  bool
	single felt.Felt
	elems  []felt.Felt
}

// SingleArg wraps one Felt argument.
func SingleArg(f felt.Felt) Arg { return Arg{single: f} }

// ArrayArg wraps a Felt-slice argument.
func ArrayArg(elems []felt.Felt) Arg { return Arg{array: true, elems: elems} }

// EntryFunction describes the call the runner is about to make: the
// declared parameter type names (used to resolve builtins, SegmentArena,
// System and GasBuiltin requirements) and the relative CASM offset of the
// function body, an opaque output of the compiler pipeline (spec.md §1)
// this package only threads through to the call trailer.
type EntryFunction struct {
	ParamTypeNames []string
	EntryOffset    int
}

// finalCallSize is the encoded size, in memory words, of the
// "call rel <offset>; ret" trailer spec.md §4.5 (v) appends (two words for
// the call, one for the ret).
const finalCallSize = 3

// EntryLayout is the outcome of synthesizing an entry function's preamble:
// the builtins the call requires and the stack segment holding every cell
// spec.md §4.5 (i)-(iv) lays down, in order.
type EntryLayout struct {
	Builtins       []BuiltinName
	BuiltinOffsets map[BuiltinName]int
	StackStart     vm.Relocatable
	StackEnd       vm.Relocatable
	CallRelOffset  int
}

// BuildEntryCode lays down the preamble spec.md §4.5 describes directly in
// vmachine's memory, in the declared order: builtin segments (their
// allocation is the caller's responsibility via the returned Builtins list,
// since builtin segments are owned by the opaque VM collaborator, not this
// package), SegmentArena/System segments, the GasBuiltin cell, and the
// user-supplied arguments. It returns the stack span and the builtins the
// caller must have registered before resuming execution.
func BuildEntryCode(vmachine *vm.VM, fn EntryFunction, gas GasState, args []Arg) (EntryLayout, error) {
	builtins, offsets := FunctionBuiltins(fn.ParamTypeNames)

	stack := vm.NewSegmentMemBuffer(vmachine)
	start := stack.Ptr()

	if hasParam(fn.ParamTypeNames, "SegmentArena") {
		infos := vmachine.AddMemorySegment()
		arena := vmachine.AddMemorySegment()
		if err := vmachine.InsertFelt(infos, felt.FromUint64(0)); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing SegmentArena n_constructed: %w", err)
		}
		if err := vmachine.InsertFelt(infos.Add(1), felt.FromUint64(0)); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing SegmentArena n_destructed: %w", err)
		}
		if err := stack.WriteRelocatable(arena); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing SegmentArena cell: %w", err)
		}
	}

	if hasParam(fn.ParamTypeNames, "System") {
		sys := vmachine.AddMemorySegment()
		if err := stack.WriteRelocatable(sys); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing System cell: %w", err)
		}
	}

	if hasParam(fn.ParamTypeNames, "GasBuiltin") {
		g, err := gas.InitialValue(true)
		if err != nil {
			return EntryLayout{}, err
		}
		if err := stack.WriteFelt(g); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing GasBuiltin cell: %w", err)
		}
	} else if _, err := gas.InitialValue(false); err != nil {
		return EntryLayout{}, err
	}

	for i, arg := range args {
		if !arg.array {
			if err := stack.WriteFelt(arg.single); err != nil {
				return EntryLayout{}, fmt.Errorf("runner: writing argument %d: %w", i, err)
			}
			continue
		}
		data := vm.NewSegmentMemBuffer(vmachine)
		dataStart := data.Ptr()
		if err := data.WriteData(arg.elems); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing array argument %d data: %w", i, err)
		}
		if err := stack.WriteRelocatable(dataStart); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing array argument %d pointer: %w", i, err)
		}
		if err := stack.WriteFelt(felt.FromUint64(uint64(len(arg.elems)))); err != nil {
			return EntryLayout{}, fmt.Errorf("runner: writing array argument %d length: %w", i, err)
		}
	}

	end := stack.Ptr()
	return EntryLayout{
		Builtins:       builtins,
		BuiltinOffsets: offsets,
		StackStart:     start,
		StackEnd:       end,
		CallRelOffset:  finalCallSize + fn.EntryOffset,
	}, nil
}
