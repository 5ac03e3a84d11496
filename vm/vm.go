package vm

import (
	"fmt"

	"github.com/reilabs/cairo-hints-go/felt"
)

func errNotFelt(r Relocatable) error {
	return fmt.Errorf("vm: cell %s holds a relocatable, not a felt", r)
}

func errNotRelocatable(f felt.Felt) error {
	return fmt.Errorf("vm: cell holds felt %s, not a relocatable", f.String())
}

// Memory is a segmented address space: a cell at (segment, offset) is either
// unwritten, a Felt, or a Relocatable. Every cheat-code's result segment is
// fresh and never reused, per spec.md §4.3's output buffer invariant.
type Memory struct {
	segments [][]*Value
}

// NewMemory returns an empty memory with no segments.
func NewMemory() *Memory {
	return &Memory{}
}

// AddSegment allocates a new, empty segment and returns its base address.
func (m *Memory) AddSegment() Relocatable {
	idx := len(m.segments)
	m.segments = append(m.segments, nil)
	return Relocatable{Segment: idx, Offset: 0}
}

// Insert writes v at addr, growing the segment if necessary.
func (m *Memory) Insert(addr Relocatable, v Value) error {
	if addr.Segment < 0 || addr.Segment >= len(m.segments) {
		return fmt.Errorf("vm: segment %d does not exist", addr.Segment)
	}
	if addr.Offset < 0 {
		return fmt.Errorf("vm: negative offset %d", addr.Offset)
	}
	seg := m.segments[addr.Segment]
	if addr.Offset >= len(seg) {
		grown := make([]*Value, addr.Offset+1)
		copy(grown, seg)
		seg = grown
		m.segments[addr.Segment] = seg
	}
	vv := v
	seg[addr.Offset] = &vv
	return nil
}

// Get reads the cell at addr, failing if it was never written.
func (m *Memory) Get(addr Relocatable) (Value, error) {
	if addr.Segment < 0 || addr.Segment >= len(m.segments) {
		return Value{}, fmt.Errorf("vm: segment %d does not exist", addr.Segment)
	}
	seg := m.segments[addr.Segment]
	if addr.Offset < 0 || addr.Offset >= len(seg) || seg[addr.Offset] == nil {
		return Value{}, fmt.Errorf("vm: cell %s is unwritten", addr)
	}
	return *seg[addr.Offset], nil
}

// GetFelt reads the Felt at addr, failing if the cell is unwritten or holds
// a Relocatable.
func (m *Memory) GetFelt(addr Relocatable) (felt.Felt, error) {
	v, err := m.Get(addr)
	if err != nil {
		return felt.Zero(), err
	}
	return v.Felt()
}

// GetRange reads every Felt in the half-open range [start, end), the way the
// hint interceptor resolves a cheat-code's input span (spec.md §4.3 step 4).
// start and end must name the same segment.
func (m *Memory) GetRange(start, end Relocatable) ([]felt.Felt, error) {
	if start.Segment != end.Segment {
		return nil, fmt.Errorf("vm: range spans segments %d and %d", start.Segment, end.Segment)
	}
	if end.Offset < start.Offset {
		return nil, fmt.Errorf("vm: range end %s precedes start %s", end, start)
	}
	out := make([]felt.Felt, 0, end.Offset-start.Offset)
	for off := start.Offset; off < end.Offset; off++ {
		f, err := m.GetFelt(Relocatable{Segment: start.Segment, Offset: off})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// GetValueRange reads every cell in the half-open range [start, end),
// preserving whether each one is a Felt or a Relocatable -- the shape the
// runner's PanicResult extraction needs, since a return value's trailing
// cells may themselves be relocatables.
func (m *Memory) GetValueRange(start, end Relocatable) ([]Value, error) {
	if start.Segment != end.Segment {
		return nil, fmt.Errorf("vm: range spans segments %d and %d", start.Segment, end.Segment)
	}
	if end.Offset < start.Offset {
		return nil, fmt.Errorf("vm: range end %s precedes start %s", end, start)
	}
	out := make([]Value, 0, end.Offset-start.Offset)
	for off := start.Offset; off < end.Offset; off++ {
		v, err := m.Get(Relocatable{Segment: start.Segment, Offset: off})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// VM is the opaque VM collaborator's surface this repository actually needs:
// segment allocation and relocatable-addressed read/write, per spec.md §1's
// description of what the VM provides to the interceptor.
type VM struct {
	Memory *Memory
}

// New returns a VM with empty memory.
func New() *VM {
	return &VM{Memory: NewMemory()}
}

// AddMemorySegment allocates a fresh segment and returns its base address.
func (vm *VM) AddMemorySegment() Relocatable {
	return vm.Memory.AddSegment()
}

// InsertFelt writes a Felt at addr.
func (vm *VM) InsertFelt(addr Relocatable, f felt.Felt) error {
	return vm.Memory.Insert(addr, FeltValue(f))
}

// InsertRelocatable writes a Relocatable at addr.
func (vm *VM) InsertRelocatable(addr Relocatable, r Relocatable) error {
	return vm.Memory.Insert(addr, RelocatableValue(r))
}

// GetInteger reads the Felt at addr.
func (vm *VM) GetInteger(addr Relocatable) (felt.Felt, error) {
	return vm.Memory.GetFelt(addr)
}

// GetRange reads every Felt in [start, end).
func (vm *VM) GetRange(start, end Relocatable) ([]felt.Felt, error) {
	return vm.Memory.GetRange(start, end)
}

// GetValueRange reads every cell in [start, end), preserving Felt vs
// Relocatable.
func (vm *VM) GetValueRange(start, end Relocatable) ([]Value, error) {
	return vm.Memory.GetValueRange(start, end)
}
