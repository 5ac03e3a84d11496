// Package hint implements the cheat-code interceptor from spec.md §4.3: a
// Processor that recognizes a VM's cheat-code hints, decodes their selector,
// round-trips the call through an oracle.OracleClient, and writes the
// encoded result back into fresh VM memory. Any hint that is not a
// cheat-code is handed unchanged to the wrapped inner processor, the Go
// analogue of Rpc1HintProcessor delegating to its inner Cairo1HintProcessor.
package hint

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/reilabs/cairo-hints-go/codec"
	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/oracle"
	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
	"github.com/reilabs/cairo-hints-go/vm"
)

// InnerProcessor executes any hint that is not a cheat-code, the role
// Cairo1HintProcessor plays inside Rpc1HintProcessor. The VM's standard hint
// set is an opaque collaborator's concern (spec.md §1/§9); this repository
// only needs somewhere to delegate to.
type InnerProcessor interface {
	ExecuteHint(vm *vm.VM, h vm.Hint) error
}

// InnerProcessorFunc adapts a function to InnerProcessor.
type InnerProcessorFunc func(vm *vm.VM, h vm.Hint) error

// ExecuteHint implements InnerProcessor.
func (f InnerProcessorFunc) ExecuteHint(vm *vm.VM, h vm.Hint) error {
	return f(vm, h)
}

// Processor is the hint interceptor: it recognizes cheat-code hints and
// dispatches everything else to its inner processor, per spec.md §4.3's
// "Trigger" and §9's "Dynamic dispatch over hint processors".
type Processor struct {
	inner         InnerProcessor
	configuration *schema.Configuration
	servers       schema.ServerRegistry
	client        oracle.OracleClient
	ctx           context.Context
}

// Option configures a Processor.
type Option func(*Processor)

// WithContext bounds every RPC the Processor issues by ctx, instead of the
// background context.
func WithContext(ctx context.Context) Option {
	return func(p *Processor) { p.ctx = ctx }
}

// New constructs a Processor. inner may be nil if the caller never expects
// a non-cheat-code hint (e.g. in a unit test that only exercises cheat-code
// dispatch).
func New(inner InnerProcessor, configuration *schema.Configuration, servers schema.ServerRegistry, client oracle.OracleClient, opts ...Option) *Processor {
	p := &Processor{
		inner:         inner,
		configuration: configuration,
		servers:       servers,
		client:        client,
		ctx:           context.Background(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ExecuteHint dispatches h: a cheat-code is handled in full by p, anything
// else is forwarded to the inner processor unchanged.
func (p *Processor) ExecuteHint(vmachine *vm.VM, h vm.Hint) error {
	if h.Cheatcode == nil {
		if p.inner == nil {
			return fmt.Errorf("hint: no inner processor configured for a non-cheatcode hint")
		}
		return p.inner.ExecuteHint(vmachine, h)
	}
	return p.executeCheatcode(vmachine, h.Cheatcode)
}

// executeCheatcode runs the full per-invocation algorithm of spec.md §4.3
// steps 1-9: decode the selector, resolve the method and server, deserialize
// the input span, invoke the oracle, serialize the result, and write it to a
// fresh output segment.
func (p *Processor) executeCheatcode(vmachine *vm.VM, c *vm.Cheatcode) error {
	selector, err := decodeSelector(c.Selector)
	if err != nil {
		return oracleerr.New(oracleerr.UnknownSelector, "", "", "cheatcode selector is not valid UTF-8", err)
	}

	method, ok := p.configuration.FindMethod(selector)
	if !ok {
		return oracleerr.New(oracleerr.UnknownSelector, selector, "", "no method declared for this selector", nil)
	}

	serverCfg, ok := p.servers[selector]
	if !ok {
		return oracleerr.New(oracleerr.NoServerConfigured, selector, "", "no server configured for this selector", nil)
	}

	inputFelts, err := vmachine.GetRange(c.InputStart, c.InputEnd)
	if err != nil {
		return oracleerr.New(oracleerr.VmError, selector, "", "failed to read cheatcode input span", err)
	}

	request, rest, err := codec.Deserialize(p.configuration, method.Input, inputFelts)
	if err != nil {
		return oracleerr.New(oracleerr.CodecMismatch, selector, "deserialize", "failed to deserialize cheatcode input", err)
	}
	if len(rest) != 0 {
		return oracleerr.New(oracleerr.CodecMismatch, selector, "deserialize", fmt.Sprintf("%d unconsumed felts after deserializing input", len(rest)), nil)
	}

	result, err := p.client.Invoke(p.ctx, serverCfg, selector, request)
	if err != nil {
		return rephase(err, selector, "rpc")
	}

	outputFelts, err := codec.Serialize(p.configuration, method.Output, result)
	if err != nil {
		return oracleerr.New(oracleerr.CodecMismatch, selector, "serialize", "failed to serialize oracle result", err)
	}

	buf := vm.NewSegmentMemBuffer(vmachine)
	start := buf.Ptr()
	if err := buf.WriteData(outputFelts); err != nil {
		return oracleerr.New(oracleerr.VmError, selector, "write", "failed to write cheatcode output segment", err)
	}
	end := buf.Ptr()

	if err := vmachine.Memory.Insert(c.OutputStart, vm.RelocatableValue(start)); err != nil {
		return oracleerr.New(oracleerr.VmError, selector, "write", "failed to write output segment start", err)
	}
	if err := vmachine.Memory.Insert(c.OutputEnd, vm.RelocatableValue(end)); err != nil {
		return oracleerr.New(oracleerr.VmError, selector, "write", "failed to write output segment end", err)
	}
	return nil
}

// decodeSelector strips the leading zero bytes a short felt pads its UTF-8
// payload with and validates what remains is UTF-8, the Go equivalent of
// selector.value.to_bytes_be().1 followed by std::str::from_utf8.
func decodeSelector(f felt.Felt) (string, error) {
	raw := f.ToBytesBE()
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	b := raw[i:]
	if !utf8.Valid(b) {
		return "", fmt.Errorf("selector bytes are not valid UTF-8: %x", b)
	}
	return string(b), nil
}

// rephase re-tags an error produced outside this package (e.g. by
// oracle.Client.Invoke) with the selector and phase this call site knows
// about, preserving its category and wrapped cause.
func rephase(err error, selector, phase string) error {
	category := oracleerr.RpcFailure
	if e, ok := err.(*oracleerr.Error); ok {
		category = e.Category()
	}
	return oracleerr.New(category, selector, phase, "oracle invocation failed", err)
}
