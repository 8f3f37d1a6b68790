package pipeline

import "github.com/sarchlab/o3sim/insts"

// Capacity constants for the out-of-order machine.
const (
	// NumPhysRegs is the size of the unified physical register file.
	NumPhysRegs = 40

	// IQSize is the number of instruction-queue entries.
	IQSize = 16

	// ROBSize is the number of reorder-buffer entries.
	ROBSize = 32

	// LSQSize is the number of load-store-queue entries.
	LSQSize = 20

	// CFQSize is the number of control-flow IDs available for outstanding
	// speculative branches.
	CFQSize = 8

	// MaxCommit is the number of instructions that can retire per cycle.
	MaxCommit = 2
)

// numRenameEntries covers the architectural registers plus the zero-flag
// pseudo-register.
const numRenameEntries = insts.NumArchRegs + 1

// PhysReg is one entry of the unified register file.
type PhysReg struct {
	// Allocated is set while a renamer claims the register.
	Allocated bool

	// Valid is set once the producing instruction has executed.
	Valid bool

	// Value is the produced result.
	Value int32

	// ZeroFlag records the flag semantics of the producing instruction.
	ZeroFlag bool
}

// PhysRegFile is the unified physical register file shared by speculative
// and committed state.
type PhysRegFile struct {
	regs [NumPhysRegs]PhysReg
}

// Reg returns the physical register at index i.
func (f *PhysRegFile) Reg(i int) *PhysReg {
	return &f.regs[i]
}

// Alloc claims a free physical register by linear scan and returns its
// index, or -1 if none is free. The claimed register is marked invalid with
// a cleared flag.
func (f *PhysRegFile) Alloc() int {
	for i := range f.regs {
		if !f.regs[i].Allocated {
			f.regs[i] = PhysReg{Allocated: true}
			return i
		}
	}
	return -1
}

// Free releases the physical register at index i.
func (f *PhysRegFile) Free(i int) {
	f.regs[i].Allocated = false
}

// Snapshot returns a copy of the whole register file.
func (f *PhysRegFile) Snapshot() [NumPhysRegs]PhysReg {
	return f.regs
}

// Restore replaces the whole register file with a snapshot.
func (f *PhysRegFile) Restore(snapshot [NumPhysRegs]PhysReg) {
	f.regs = snapshot
}

// RenameTable maps architectural registers (plus the zero-flag
// pseudo-register) to physical registers. A value of -1 means no current
// mapping.
type RenameTable struct {
	m [numRenameEntries]int
}

// NewRenameTable returns a table with every entry unmapped.
func NewRenameTable() RenameTable {
	var t RenameTable
	for i := range t.m {
		t.m[i] = -1
	}
	return t
}

// Get returns the physical register mapped to architectural register r, or
// -1 if unmapped.
func (t *RenameTable) Get(r int) int {
	return t.m[r]
}

// Set maps architectural register r to physical register p.
func (t *RenameTable) Set(r, p int) {
	t.m[r] = p
}

// Snapshot returns a copy of the mapping.
func (t *RenameTable) Snapshot() [numRenameEntries]int {
	return t.m
}

// Restore replaces the mapping with a snapshot.
func (t *RenameTable) Restore(snapshot [numRenameEntries]int) {
	t.m = snapshot
}

// References reports whether any entry maps to physical register p.
func (t *RenameTable) References(p int) bool {
	for _, v := range t.m {
		if v == p {
			return true
		}
	}
	return false
}
