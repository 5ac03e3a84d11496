// Package program is this port's boundary substitute for the artifact
// spec.md §1 explicitly treats as opaque input: "the Cairo compiler
// pipeline (Sierra → CASM lowering) ... an opaque producer of a compiled
// program and an entry-point descriptor", together with the VM's own
// instruction stepping ("a trap mechanism that calls back on the
// designated cheat-code hint"). Neither the Sierra→CASM lowering nor the
// CASM step loop is implemented anywhere in this repository (package vm
// already stops short of resolving ResOperand indirection itself, for the
// same reason). A Run is what that opaque pipeline would have handed the
// runner for one entry function: its descriptor, the ordered cheat-code
// trace the VM would trap on while stepping through it, and the final
// PanicResult the function would return. Loading one from JSON lets the
// CLI commands exercise the real, in-scope machinery -- entry code
// synthesis, the hint interceptor, the codec, the oracle client, and
// PanicResult extraction -- without reimplementing a Cairo interpreter.
package program

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reilabs/cairo-hints-go/felt"
	"github.com/reilabs/cairo-hints-go/vm"
)

// Step is one cheat-code trap spec.md §4.3's "Trigger" describes: a
// selector and the input felts the VM would already have resolved from the
// entry function's ResOperands before invoking the hint interceptor.
type Step struct {
	Selector string   `json:"selector"`
	Input    []string `json:"input"`
}

// EntryFunction is spec.md §3's "Entry descriptor": an opaque identifier
// for the Cairo entry function plus its parameter types, used only to
// build the VM entry code.
type EntryFunction struct {
	ParamTypeNames []string `json:"param_type_names"`
	EntryOffset    int      `json:"entry_offset"`
}

// Return is the PanicResult spec.md §4.5's run loop interprets: either a
// normal return carrying Values, or a panic carrying PanicData.
type Return struct {
	Panic     bool     `json:"panic"`
	Values    []string `json:"values"`
	PanicData []string `json:"panic_data"`
}

// Run is one compiled entry function: its descriptor, cheat-code trace, and
// declared return.
type Run struct {
	EntryFunction EntryFunction `json:"entry_function"`
	Steps         []Step        `json:"steps"`
	Return        Return        `json:"return"`
}

// TestCase is one compiled test function per spec.md §4.6: a named Run plus
// its declared expectation ("success" | "panics_any" | "panics_exact").
type TestCase struct {
	Name        string   `json:"name"`
	Ignored     bool     `json:"ignored"`
	Expectation string   `json:"expectation"`
	PanicData   []string `json:"panic_data"`
	Run         Run      `json:"run"`
}

// LoadRun reads a single Run from path.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: reading %s: %w", path, err)
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("program: parsing %s: %w", path, err)
	}
	return &r, nil
}

// LoadTestCases reads a list of TestCase from path.
func LoadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: reading %s: %w", path, err)
	}
	var cases []TestCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("program: parsing %s: %w", path, err)
	}
	return cases, nil
}

// ParseFelts converts a list of decimal or hex strings into Felts, the Go
// side of the original CLI's arguments deserializer: each element is parsed
// as an arbitrary-precision integer, not truncated to 64 bits.
func ParseFelts(strs []string) ([]felt.Felt, error) {
	out := make([]felt.Felt, len(strs))
	for i, s := range strs {
		f, err := felt.FromHexOrDecimal(s)
		if err != nil {
			return nil, fmt.Errorf("program: element %d (%q) is not a valid felt: %w", i, s, err)
		}
		out[i] = f
	}
	return out, nil
}

// Hints stages r's cheat-code trace into vmachine's memory: each step's
// input felts are written into a fresh segment, and a two-cell output slot
// is reserved for the hint interceptor to fill in, mirroring the staging
// hint_test.go's writeCheatcode helper does for a single cheat-code.
func (r Run) Hints(vmachine *vm.VM) ([]vm.Hint, error) {
	hints := make([]vm.Hint, 0, len(r.Steps))
	for i, step := range r.Steps {
		inputFelts, err := ParseFelts(step.Input)
		if err != nil {
			return nil, fmt.Errorf("program: step %d (%s): %w", i, step.Selector, err)
		}

		in := vm.NewSegmentMemBuffer(vmachine)
		start := in.Ptr()
		if err := in.WriteData(inputFelts); err != nil {
			return nil, fmt.Errorf("program: step %d (%s): writing input segment: %w", i, step.Selector, err)
		}
		end := in.Ptr()

		out := vm.NewSegmentMemBuffer(vmachine)
		outStart := out.Ptr()
		outEnd := outStart.Add(1)

		hints = append(hints, vm.Hint{Cheatcode: &vm.Cheatcode{
			Selector:    felt.FromBytesBESlice([]byte(step.Selector)),
			InputStart:  start,
			InputEnd:    end,
			OutputStart: outStart,
			OutputEnd:   outEnd,
		}})
	}
	return hints, nil
}

// ReturnSpan materializes r.Return into a fresh segment laid out exactly as
// spec.md §4.5's run loop expects to read it back: a leading ok-flag cell,
// then either two dropped cells followed by the return values (ok), or a
// trailing relocatable span into a panic-data segment (panic).
func (r Run) ReturnSpan(vmachine *vm.VM) (vm.Relocatable, vm.Relocatable, error) {
	buf := vm.NewSegmentMemBuffer(vmachine)
	start := buf.Ptr()

	if r.Return.Panic {
		data, err := ParseFelts(r.Return.PanicData)
		if err != nil {
			return vm.Relocatable{}, vm.Relocatable{}, fmt.Errorf("program: return panic data: %w", err)
		}
		panicBuf := vm.NewSegmentMemBuffer(vmachine)
		panicStart := panicBuf.Ptr()
		if err := panicBuf.WriteData(data); err != nil {
			return vm.Relocatable{}, vm.Relocatable{}, fmt.Errorf("program: writing panic data segment: %w", err)
		}
		panicEnd := panicBuf.Ptr()

		if err := buf.WriteFelt(felt.FromUint64(1)); err != nil {
			return vm.Relocatable{}, vm.Relocatable{}, err
		}
		if err := buf.WriteRelocatable(panicStart); err != nil {
			return vm.Relocatable{}, vm.Relocatable{}, err
		}
		if err := buf.WriteRelocatable(panicEnd); err != nil {
			return vm.Relocatable{}, vm.Relocatable{}, err
		}
		return start, buf.Ptr(), nil
	}

	values, err := ParseFelts(r.Return.Values)
	if err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, fmt.Errorf("program: return values: %w", err)
	}
	if err := buf.WriteFelt(felt.Zero()); err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, err
	}
	if err := buf.WriteFelt(felt.Zero()); err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, err
	}
	if err := buf.WriteData(values); err != nil {
		return vm.Relocatable{}, vm.Relocatable{}, err
	}
	return start, buf.Ptr(), nil
}
