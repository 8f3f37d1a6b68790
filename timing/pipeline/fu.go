package pipeline

import "github.com/sarchlab/o3sim/insts"

// FuncUnit models one fixed-latency functional unit.
//
// Busy is a countdown: it is decremented once per cycle, the unit performs
// its action when the countdown reaches exactly zero, and any value at or
// below zero means the unit can accept new work.
type FuncUnit struct {
	// Busy is the remaining-cycle countdown.
	Busy int

	// Op is the opcode in flight.
	Op insts.Op

	// PC of the instruction in flight.
	PC int32

	// Imm is the literal operand.
	Imm int32

	// Latched source values.
	URs1Val int32
	URs2Val int32

	// PhysRd is the renamed destination, -1 if none.
	PhysRd int

	// ZeroFlagIn is the latched zero-flag operand for BZ/BNZ.
	ZeroFlagIn bool

	// Addr is the computed address, memory unit only.
	Addr int32

	// Cross-references.
	ROBIndex int
	CFID     int
}

// Idle reports whether the unit can accept new work.
func (f *FuncUnit) Idle() bool {
	return f.Busy <= 0
}

// Executing reports whether the unit holds an instruction that has not yet
// completed.
func (f *FuncUnit) Executing() bool {
	return f.Busy > 0
}

// Kill discards the instruction in flight so the countdown can never reach
// zero. Used when a squash flushes the unit.
func (f *FuncUnit) Kill() {
	f.Busy = -1
	f.Op = insts.OpNOP
	f.PhysRd = -1
	f.ROBIndex = -1
	f.CFID = -1
}
