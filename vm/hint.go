package vm

import "github.com/reilabs/cairo-hints-go/felt"

// Cheatcode is the hint shape the interceptor recognises: a selector and the
// relocatable spans of its input and output cells (spec.md §4.3 "Trigger").
// The VM is assumed to have already resolved any ResOperand/CellRef
// indirection into concrete Relocatables before handing the hint to a
// Processor — the ResOperand resolution machinery itself belongs to the
// opaque VM collaborator (spec.md §1), not this substrate.
type Cheatcode struct {
	Selector    felt.Felt
	InputStart  Relocatable
	InputEnd    Relocatable
	OutputStart Relocatable
	OutputEnd   Relocatable
}

// Hint is the polymorphic hint shape a Processor is consulted on: either a
// Cheatcode the oracle interceptor should handle, or an opaque hint that
// belongs to the inner (standard) hint processor (spec.md §9 "Dynamic
// dispatch over hint processors").
type Hint struct {
	Cheatcode *Cheatcode
	Other     any
}

// MemBuffer is a cursor that writes successive cells into one segment: a
// fresh segment allocates the cursor, and each write advances it by one
// cell.
type MemBuffer struct {
	vm  *VM
	ptr Relocatable
}

// NewMemBuffer wraps an existing pointer in a write cursor.
func NewMemBuffer(vm *VM, ptr Relocatable) *MemBuffer {
	return &MemBuffer{vm: vm, ptr: ptr}
}

// NewSegmentMemBuffer allocates a fresh segment and returns a cursor over it.
func NewSegmentMemBuffer(vm *VM) *MemBuffer {
	return NewMemBuffer(vm, vm.AddMemorySegment())
}

// Ptr returns the buffer's current position.
func (b *MemBuffer) Ptr() Relocatable {
	return b.ptr
}

// WriteFelt writes f at the buffer's current position and advances it.
func (b *MemBuffer) WriteFelt(f felt.Felt) error {
	addr := b.ptr
	b.ptr = b.ptr.Add(1)
	return b.vm.InsertFelt(addr, f)
}

// WriteData writes every Felt in data in order, advancing the buffer past
// the last one.
func (b *MemBuffer) WriteData(data []felt.Felt) error {
	for _, f := range data {
		if err := b.WriteFelt(f); err != nil {
			return err
		}
	}
	return nil
}

// WriteRelocatable writes r at the buffer's current position and advances
// it, the way entry-code synthesis stages a segment pointer (SegmentArena,
// System, an array argument's data pointer) onto the call stack.
func (b *MemBuffer) WriteRelocatable(r Relocatable) error {
	addr := b.ptr
	b.ptr = b.ptr.Add(1)
	return b.vm.InsertRelocatable(addr, r)
}
