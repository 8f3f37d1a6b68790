package pipeline

import "github.com/sarchlab/o3sim/insts"

// StageLatch carries one instruction between the front-end stages
// (fetch → decode → dispatch). A latch holds its content until the consumer
// stage drains it; a full downstream structure therefore backpressures the
// producer for exactly as long as needed.
type StageLatch struct {
	// Valid indicates the latch holds an instruction.
	Valid bool

	// PC of the instruction.
	PC int32

	// Inst is the instruction.
	Inst insts.Instruction

	// Renamed destination, -1 if none.
	URd int

	// Renamed sources, -1 if unmapped or unused.
	URs1 int
	URs2 int

	// ZFlagSrc is the renamed zero-flag producer for BZ/BNZ, -1 if none.
	ZFlagSrc int
}

// Clear resets the latch.
func (l *StageLatch) Clear() {
	l.Valid = false
	l.PC = 0
	l.Inst = insts.Nop()
	l.URd = -1
	l.URs1 = -1
	l.URs2 = -1
	l.ZFlagSrc = -1
}
