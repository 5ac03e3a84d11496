package runner

import (
	"fmt"
	"unicode/utf8"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/vm"
)

// HintProcessor is the contract the run loop drives on every hint the VM
// traps on, satisfied by *hint.Processor. Kept as an interface here (rather
// than importing package hint directly) so runner has no dependency on the
// codec/oracle wiring a cheat-code handler needs -- it only needs something
// that reacts to vm.Hint.
type HintProcessor interface {
	ExecuteHint(vm *vm.VM, h vm.Hint) error
}

// Outcome is a completed, non-panicking run's result.
type Outcome struct {
	ReturnValues []felt.Felt
	GasConsumed  uint64
}

// PanicError is RunPanic(data) from spec.md §7/§4.5: the entry function
// returned a PanicResult with a nonzero first cell. Data is the panic
// payload, in declaration order.
type PanicError struct {
	Data []felt.Felt
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("program panicked with %v", feltStrings(e.Data))
}

func feltStrings(data []felt.Felt) []string {
	out := make([]string, len(data))
	for i, f := range data {
		out[i] = f.String()
	}
	return out
}

// ShortString decodes f as a Cairo short string: its big-endian bytes with
// leading zero padding stripped, interpreted as UTF-8. Non-UTF-8 felts
// render as their decimal value instead, since not every panic payload
// element is a short string.
func ShortString(f felt.Felt) string {
	raw := f.ToBytesBE()
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	b := raw[i:]
	if len(b) == 0 {
		return ""
	}
	if !utf8.Valid(b) {
		return f.String()
	}
	return string(b)
}

// Run drives processor over hints in program order against vmachine, then
// interprets the return value span per spec.md §4.5's run loop: "install
// the hint interceptor wrapping the standard hint processor; run until the
// program's implicit halt". The VM's own instruction stepping between hints
// is the opaque collaborator's concern (spec.md §1); this package only
// drives the hints it is handed and the final PanicResult protocol.
func Run(vmachine *vm.VM, processor HintProcessor, hints []vm.Hint, returnStart, returnEnd vm.Relocatable) (Outcome, error) {
	for _, h := range hints {
		if err := processor.ExecuteHint(vmachine, h); err != nil {
			return Outcome{}, err
		}
	}
	return ExtractResult(vmachine, returnStart, returnEnd)
}

// ExtractResult interprets the cells in [returnStart, returnEnd) per
// spec.md §4.5's PanicResult protocol: a nonzero first cell means the
// function panicked and the trailing two cells are a relocatable span into
// the panic data; a zero first cell means a normal return, and the first
// two cells are dropped from the remainder.
func ExtractResult(vmachine *vm.VM, returnStart, returnEnd vm.Relocatable) (Outcome, error) {
	cells, err := vmachine.GetValueRange(returnStart, returnEnd)
	if err != nil {
		return Outcome{}, fmt.Errorf("runner: reading return value span: %w", err)
	}
	if len(cells) == 0 {
		return Outcome{}, fmt.Errorf("runner: entry function returned no cells")
	}

	okFlag, err := cells[0].Felt()
	if err != nil {
		return Outcome{}, fmt.Errorf("runner: return value's first cell is not a felt: %w", err)
	}

	if !okFlag.IsZero() {
		if len(cells) < 2 {
			return Outcome{}, fmt.Errorf("runner: panicking return has no panic data span")
		}
		start, err := cells[len(cells)-2].Relocatable()
		if err != nil {
			return Outcome{}, fmt.Errorf("runner: panic data span start is not a relocatable: %w", err)
		}
		end, err := cells[len(cells)-1].Relocatable()
		if err != nil {
			return Outcome{}, fmt.Errorf("runner: panic data span end is not a relocatable: %w", err)
		}
		data, err := vmachine.GetRange(start, end)
		if err != nil {
			return Outcome{}, fmt.Errorf("runner: reading panic data span: %w", err)
		}
		return Outcome{}, &PanicError{Data: data}
	}

	if len(cells) < 2 {
		return Outcome{}, fmt.Errorf("runner: non-panicking return has fewer than 2 cells to drop")
	}
	remainder := cells[2:]
	out := make([]felt.Felt, 0, len(remainder))
	for i, c := range remainder {
		f, err := c.Felt()
		if err != nil {
			return Outcome{}, fmt.Errorf("runner: return value cell %d is not a felt: %w", i, err)
		}
		out = append(out, f)
	}
	return Outcome{ReturnValues: out}, nil
}
