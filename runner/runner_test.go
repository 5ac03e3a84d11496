package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/vm"
)

func TestFunctionBuiltinsOrderedAndReversed(t *testing.T) {
	builtins, offsets := FunctionBuiltins([]string{"RangeCheck", "Pedersen", "Poseidon"})
	assert.Equal(t, []BuiltinName{Pedersen, RangeCheck, Poseidon}, builtins)
	assert.Equal(t, 3, offsets[Poseidon])
	assert.Equal(t, 4, offsets[RangeCheck])
	assert.Equal(t, 5, offsets[Pedersen])
}

func TestFunctionBuiltinsAllFive(t *testing.T) {
	builtins, _ := FunctionBuiltins([]string{"Poseidon", "EcOp", "Bitwise", "RangeCheck", "Pedersen"})
	assert.Equal(t, []BuiltinName{Pedersen, RangeCheck, Bitwise, EcOp, Poseidon}, builtins)
}

func TestGasStateDisabledRejectsGasRequirement(t *testing.T) {
	_, err := DisabledGas().InitialValue(true)
	require.Error(t, err)
}

func TestGasStateDisabledAllowsNoGasRequirement(t *testing.T) {
	v, err := DisabledGas().InitialValue(false)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestGasStateLimited(t *testing.T) {
	v, err := LimitedGas(42).InitialValue(true)
	require.NoError(t, err)
	u, err := v.ToUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u)
}

func TestBuildEntryCodeSingleAndArrayArgs(t *testing.T) {
	vmachine := vm.New()
	fn := EntryFunction{ParamTypeNames: []string{"RangeCheck", "GasBuiltin"}, EntryOffset: 10}

	layout, err := BuildEntryCode(vmachine, fn, LimitedGas(1000), []Arg{
		SingleArg(felt.FromUint64(7)),
		ArrayArg([]felt.Felt{felt.FromUint64(1), felt.FromUint64(2), felt.FromUint64(3)}),
	})
	require.NoError(t, err)
	assert.Equal(t, []BuiltinName{RangeCheck}, layout.Builtins)
	assert.Equal(t, finalCallSize+10, layout.CallRelOffset)

	cells, err := vmachine.GetValueRange(layout.StackStart, layout.StackEnd)
	require.NoError(t, err)
	// gas cell, single arg, array ptr, array len = 4 cells.
	require.Len(t, cells, 4)

	gasFelt, err := cells[0].Felt()
	require.NoError(t, err)
	u, _ := gasFelt.ToUint64()
	assert.Equal(t, uint64(1000), u)

	singleFelt, err := cells[1].Felt()
	require.NoError(t, err)
	u, _ = singleFelt.ToUint64()
	assert.Equal(t, uint64(7), u)

	arrayPtr, err := cells[2].Relocatable()
	require.NoError(t, err)
	arrayLen, err := cells[3].Felt()
	require.NoError(t, err)
	n, _ := arrayLen.ToUint64()
	assert.Equal(t, uint64(3), n)

	arrData, err := vmachine.GetRange(arrayPtr, arrayPtr.Add(int(n)))
	require.NoError(t, err)
	require.Len(t, arrData, 3)
	v1, _ := arrData[1].ToUint64()
	assert.Equal(t, uint64(2), v1)
}

func TestBuildEntryCodeDisabledGasWithoutGasBuiltinSucceeds(t *testing.T) {
	vmachine := vm.New()
	fn := EntryFunction{ParamTypeNames: []string{}, EntryOffset: 0}
	layout, err := BuildEntryCode(vmachine, fn, DisabledGas(), nil)
	require.NoError(t, err)
	assert.Empty(t, layout.Builtins)
}

func TestExtractResultNonPanicDropsFirstTwoCells(t *testing.T) {
	vmachine := vm.New()
	buf := vm.NewSegmentMemBuffer(vmachine)
	start := buf.Ptr()
	require.NoError(t, buf.WriteFelt(felt.FromUint64(0))) // ok_flag
	require.NoError(t, buf.WriteFelt(felt.FromUint64(0))) // dropped
	require.NoError(t, buf.WriteFelt(felt.FromUint64(11)))
	require.NoError(t, buf.WriteFelt(felt.FromUint64(12)))
	end := buf.Ptr()

	out, err := ExtractResult(vmachine, start, end)
	require.NoError(t, err)
	require.Len(t, out.ReturnValues, 2)
	u, _ := out.ReturnValues[0].ToUint64()
	assert.Equal(t, uint64(11), u)
}

func TestExtractResultPanicExtractsDataSpan(t *testing.T) {
	vmachine := vm.New()
	data := vm.NewSegmentMemBuffer(vmachine)
	dataStart := data.Ptr()
	require.NoError(t, data.WriteFelt(felt.FromBytesBESlice([]byte("failure"))))
	dataEnd := data.Ptr()

	buf := vm.NewSegmentMemBuffer(vmachine)
	start := buf.Ptr()
	require.NoError(t, buf.WriteFelt(felt.FromUint64(1))) // nonzero ok_flag
	require.NoError(t, buf.WriteRelocatable(dataStart))
	require.NoError(t, buf.WriteRelocatable(dataEnd))
	end := buf.Ptr()

	_, err := ExtractResult(vmachine, start, end)
	require.Error(t, err)
	var panicErr *PanicError
	require.True(t, errors.As(err, &panicErr))
	require.Len(t, panicErr.Data, 1)
	assert.Equal(t, "failure", ShortString(panicErr.Data[0]))
}

func TestRunStopsOnHintError(t *testing.T) {
	vmachine := vm.New()
	boom := errors.New("boom")
	processor := hintProcessorFunc(func(vm *vm.VM, h vm.Hint) error { return boom })

	buf := vm.NewSegmentMemBuffer(vmachine)
	start := buf.Ptr()
	require.NoError(t, buf.WriteFelt(felt.FromUint64(0)))
	require.NoError(t, buf.WriteFelt(felt.FromUint64(0)))
	end := buf.Ptr()

	_, err := Run(vmachine, processor, []vm.Hint{{Other: "x"}}, start, end)
	require.ErrorIs(t, err, boom)
}

type hintProcessorFunc func(vm *vm.VM, h vm.Hint) error

func (f hintProcessorFunc) ExecuteHint(vm *vm.VM, h vm.Hint) error { return f(vm, h) }
