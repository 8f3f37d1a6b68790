package pipeline

import "github.com/sarchlab/o3sim/insts"

// ROBEntry is one in-flight instruction in the reorder buffer.
type ROBEntry struct {
	// Allocated is set while the entry is in use.
	Allocated bool

	// Completed is set once the instruction has produced its result (or
	// needs none) and may retire.
	Completed bool

	// Op is the opcode. Squash rewrites shadow entries to NOP so commit can
	// drain them.
	Op insts.Op

	// PC of the instruction.
	PC int32

	// ArchRd is the destination architectural register, -1 if none.
	ArchRd int

	// PhysRd is the renamed destination, -1 if none.
	PhysRd int

	// LSQIndex cross-references the load-store queue entry for memory
	// operations, -1 otherwise.
	LSQIndex int

	// CFID is the control-flow ID this instruction dispatched under, -1
	// outside any branch shadow.
	CFID int
}

// ROB is the reorder buffer: a circular queue allocated at dispatch in
// program order and drained at the head.
type ROB struct {
	head    int
	tail    int
	count   int
	entries [ROBSize]ROBEntry
}

// Full reports whether no entry is free.
func (r *ROB) Full() bool {
	return r.count == ROBSize
}

// Empty reports whether no entry is allocated.
func (r *ROB) Empty() bool {
	return r.count == 0
}

// Count returns the number of allocated entries.
func (r *ROB) Count() int {
	return r.count
}

// Alloc appends an entry at the tail and returns its index. The caller must
// check Full first.
func (r *ROB) Alloc(e ROBEntry) int {
	idx := r.tail
	r.entries[idx] = e
	r.tail = (r.tail + 1) % ROBSize
	r.count++
	return idx
}

// Head returns the head entry and its index, or nil if the buffer is empty.
func (r *ROB) Head() (*ROBEntry, int) {
	if r.count == 0 {
		return nil, -1
	}
	return &r.entries[r.head], r.head
}

// PopHead releases the head entry and advances the head pointer.
func (r *ROB) PopHead() {
	r.entries[r.head] = ROBEntry{ArchRd: -1, PhysRd: -1, LSQIndex: -1, CFID: -1}
	r.head = (r.head + 1) % ROBSize
	r.count--
}

// Entry returns the entry at index i.
func (r *ROB) Entry(i int) *ROBEntry {
	return &r.entries[i]
}

// HeadIndex returns the index of the head entry.
func (r *ROB) HeadIndex() int {
	return r.head
}

// TailIndex returns the index one past the newest entry.
func (r *ROB) TailIndex() int {
	return r.tail
}
