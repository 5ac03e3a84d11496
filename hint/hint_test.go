package hint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reilabs/cairo-hints-go/codec"
	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/oracle/mock"
	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
	"github.com/reilabs/cairo-hints-go/vm"
)

func sqrtConfiguration() *schema.Configuration {
	cfg := schema.New()
	cfg.Messages["Request"] = []schema.Field{{Name: "n", Ty: schema.Primitive(schema.U64)}}
	cfg.Messages["Response"] = []schema.Field{{Name: "n", Ty: schema.Primitive(schema.U64)}}
	cfg.Services["SqrtOracle"] = schema.Service{
		Methods: map[string]schema.MethodDeclaration{
			"sqrt": {Input: schema.Message("Request"), Output: schema.Message("Response")},
		},
	}
	return cfg
}

func selectorFelt(s string) felt.Felt {
	return felt.FromBytesBESlice([]byte(s))
}

// writeCheatcode writes request into a fresh input segment and returns a
// Cheatcode wired to read it and write its output to a fresh output cell
// pair, mirroring how a VM would lay out a cheat-code call.
func writeCheatcode(t *testing.T, vmachine *vm.VM, cfg *schema.Configuration, ty schema.FieldType, selector string, request any) (*vm.Cheatcode, vm.Relocatable, vm.Relocatable) {
	t.Helper()
	felts, err := codec.Serialize(cfg, ty, request)
	require.NoError(t, err)

	in := vm.NewSegmentMemBuffer(vmachine)
	start := in.Ptr()
	require.NoError(t, in.WriteData(felts))
	end := in.Ptr()

	out := vm.NewSegmentMemBuffer(vmachine)
	outStartCell := out.Ptr()
	outEndCell := outStartCell.Add(1)

	return &vm.Cheatcode{
		Selector:    selectorFelt(selector),
		InputStart:  start,
		InputEnd:    end,
		OutputStart: outStartCell,
		OutputEnd:   outEndCell,
	}, outStartCell, outEndCell
}

func TestExecuteCheatcodeSqrtSync(t *testing.T) {
	cfg := sqrtConfiguration()
	client := mock.New()
	client.Handle("sqrt", func(request any) (any, error) {
		req, ok := request.(map[string]any)
		require.True(t, ok)
		n, ok := req["n"].(uint64)
		require.True(t, ok)
		return map[string]any{"n": n * n}, nil
	})

	vmachine := vm.New()
	servers := schema.ServerRegistry{"sqrt": {ServerURL: "http://unused.example"}}
	proc := New(nil, cfg, servers, client)

	c, outStartCell, outEndCell := writeCheatcode(t, vmachine, cfg, schema.Message("Request"), "sqrt", map[string]any{"n": uint64(7)})

	require.NoError(t, proc.ExecuteHint(vmachine, vm.Hint{Cheatcode: c}))

	outStart, err := vmachine.Memory.Get(outStartCell)
	require.NoError(t, err)
	outEnd, err := vmachine.Memory.Get(outEndCell)
	require.NoError(t, err)
	startRel, err := outStart.Relocatable()
	require.NoError(t, err)
	endRel, err := outEnd.Relocatable()
	require.NoError(t, err)

	resultFelts, err := vmachine.GetRange(startRel, endRel)
	require.NoError(t, err)
	decoded, rest, err := codec.Deserialize(cfg, schema.Message("Response"), resultFelts)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, map[string]any{"n": uint64(49)}, decoded)
}

func TestExecuteCheatcodeUnknownSelector(t *testing.T) {
	cfg := sqrtConfiguration()
	client := mock.New()
	vmachine := vm.New()
	proc := New(nil, cfg, schema.ServerRegistry{}, client)

	c, _, _ := writeCheatcode(t, vmachine, cfg, schema.Message("Request"), "does_not_exist", map[string]any{"n": uint64(1)})

	err := proc.ExecuteHint(vmachine, vm.Hint{Cheatcode: c})
	require.Error(t, err)
	var taxErr *oracleerr.Error
	require.True(t, errors.As(err, &taxErr))
	assert.Equal(t, oracleerr.UnknownSelector, taxErr.Category())
}

func TestExecuteCheatcodeNoServerConfigured(t *testing.T) {
	cfg := sqrtConfiguration()
	client := mock.New()
	vmachine := vm.New()
	proc := New(nil, cfg, schema.ServerRegistry{}, client)

	c, _, _ := writeCheatcode(t, vmachine, cfg, schema.Message("Request"), "sqrt", map[string]any{"n": uint64(1)})

	err := proc.ExecuteHint(vmachine, vm.Hint{Cheatcode: c})
	require.Error(t, err)
	var taxErr *oracleerr.Error
	require.True(t, errors.As(err, &taxErr))
	assert.Equal(t, oracleerr.NoServerConfigured, taxErr.Category())
}

func TestExecuteCheatcodeRpcFailurePhaseTagged(t *testing.T) {
	cfg := sqrtConfiguration()
	client := mock.New()
	client.Handle("sqrt", func(request any) (any, error) {
		return nil, oracleerr.New(oracleerr.RpcFailure, "sqrt", "rpc", "oracle exploded", nil)
	})
	vmachine := vm.New()
	servers := schema.ServerRegistry{"sqrt": {ServerURL: "http://unused.example"}}
	proc := New(nil, cfg, servers, client)

	c, _, _ := writeCheatcode(t, vmachine, cfg, schema.Message("Request"), "sqrt", map[string]any{"n": uint64(1)})

	err := proc.ExecuteHint(vmachine, vm.Hint{Cheatcode: c})
	require.Error(t, err)
	var taxErr *oracleerr.Error
	require.True(t, errors.As(err, &taxErr))
	assert.Equal(t, oracleerr.RpcFailure, taxErr.Category())
	assert.Equal(t, "sqrt", taxErr.Selector())
	assert.Equal(t, "rpc", taxErr.Phase())
}

func TestExecuteCheatcodeCodecMismatchOnDeserialize(t *testing.T) {
	cfg := sqrtConfiguration()
	client := mock.New()
	vmachine := vm.New()
	servers := schema.ServerRegistry{"sqrt": {ServerURL: "http://unused.example"}}
	proc := New(nil, cfg, servers, client)

	// An empty input span can't satisfy Request{n: u64}: deserialize fails.
	in := vm.NewSegmentMemBuffer(vmachine)
	start := in.Ptr()
	end := in.Ptr()
	out := vm.NewSegmentMemBuffer(vmachine)
	outStartCell := out.Ptr()
	outEndCell := outStartCell.Add(1)
	c := &vm.Cheatcode{
		Selector:    selectorFelt("sqrt"),
		InputStart:  start,
		InputEnd:    end,
		OutputStart: outStartCell,
		OutputEnd:   outEndCell,
	}

	err := proc.ExecuteHint(vmachine, vm.Hint{Cheatcode: c})
	require.Error(t, err)
	var taxErr *oracleerr.Error
	require.True(t, errors.As(err, &taxErr))
	assert.Equal(t, oracleerr.CodecMismatch, taxErr.Category())
	assert.Equal(t, "deserialize", taxErr.Phase())
}

func TestExecuteHintDelegatesNonCheatcodeToInner(t *testing.T) {
	cfg := sqrtConfiguration()
	client := mock.New()
	vmachine := vm.New()

	called := false
	inner := InnerProcessorFunc(func(vm *vm.VM, h vm.Hint) error {
		called = true
		assert.Equal(t, "not-a-cheatcode", h.Other)
		return nil
	})

	proc := New(inner, cfg, schema.ServerRegistry{}, client)
	require.NoError(t, proc.ExecuteHint(vmachine, vm.Hint{Other: "not-a-cheatcode"}))
	assert.True(t, called)
}
