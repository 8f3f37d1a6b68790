package pipeline

import "github.com/sarchlab/o3sim/insts"

// LSQEntry is one in-flight memory operation.
type LSQEntry struct {
	// Allocated is set while the entry is in use.
	Allocated bool

	// Done is set when a squash turns the entry into a completed NOP.
	// Operations that drain normally are popped instead.
	Done bool

	// PC of the instruction.
	PC int32

	// Op is LOAD or STORE; squash rewrites shadow entries to NOP.
	Op insts.Op

	// Computed memory address, produced by the integer unit.
	AddrValid bool
	Addr      int32

	// Store data operand: physical register tag, readiness, latched value.
	URs2      int
	URs2Ready bool
	URs2Val   int32

	// PhysRd is the renamed destination, loads only.
	PhysRd int

	// Cross-references.
	ROBIndex int
	CFID     int
}

// LSQ is the load-store queue: a circular FIFO preserving program order
// between memory operations.
type LSQ struct {
	head    int
	tail    int
	count   int
	entries [LSQSize]LSQEntry
}

// Full reports whether no entry is free.
func (q *LSQ) Full() bool {
	return q.count == LSQSize
}

// Empty reports whether no entry is allocated.
func (q *LSQ) Empty() bool {
	return q.count == 0
}

// Count returns the number of allocated entries.
func (q *LSQ) Count() int {
	return q.count
}

// Alloc appends an entry at the tail and returns its index. The caller must
// check Full first.
func (q *LSQ) Alloc(e LSQEntry) int {
	idx := q.tail
	q.entries[idx] = e
	q.tail = (q.tail + 1) % LSQSize
	q.count++
	return idx
}

// Head returns the head entry and its index, or nil if the queue is empty.
func (q *LSQ) Head() (*LSQEntry, int) {
	if q.count == 0 {
		return nil, -1
	}
	return &q.entries[q.head], q.head
}

// Pop releases the head entry and advances the head pointer.
func (q *LSQ) Pop() {
	q.entries[q.head] = LSQEntry{URs2: -1, PhysRd: -1, ROBIndex: -1, CFID: -1}
	q.head = (q.head + 1) % LSQSize
	q.count--
}

// Entry returns the entry at index i.
func (q *LSQ) Entry(i int) *LSQEntry {
	return &q.entries[i]
}

// ForEachInOrder calls fn for every allocated entry from head to tail.
func (q *LSQ) ForEachInOrder(fn func(idx int, e *LSQEntry)) {
	for i, idx := 0, q.head; i < q.count; i, idx = i+1, (idx+1)%LSQSize {
		fn(idx, &q.entries[idx])
	}
}
