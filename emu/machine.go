package emu

import (
	"fmt"

	"github.com/sarchlab/o3sim/insts"
)

// Machine is the in-order reference interpreter. It executes one
// instruction per step with the architectural semantics of the ISA and no
// timing model. The out-of-order pipeline must retire to exactly the
// register state this machine produces.
type Machine struct {
	regs     [insts.NumArchRegs]int32
	zeroFlag bool

	memory *Memory
	code   []insts.Instruction
	pc     int32

	halted           bool
	instructionCount uint64
}

// MachineOption is a functional option for configuring the Machine.
type MachineOption func(*Machine)

// WithMemory supplies a pre-populated data memory.
func WithMemory(m *Memory) MachineOption {
	return func(e *Machine) {
		e.memory = m
	}
}

// NewMachine creates a reference machine for the given program.
func NewMachine(code []insts.Instruction, opts ...MachineOption) *Machine {
	m := &Machine{
		code: code,
		pc:   insts.CodeStartAddr,
		// Before any arithmetic executes every register holds zero, so the
		// flag starts set.
		zeroFlag: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.memory == nil {
		m.memory = NewMemory()
	}
	return m
}

// Reg returns the value of architectural register r.
func (m *Machine) Reg(r int) int32 {
	return m.regs[r]
}

// SetReg sets architectural register r. Intended for test setup.
func (m *Machine) SetReg(r int, v int32) {
	m.regs[r] = v
}

// Regs returns a copy of the architectural register file.
func (m *Machine) Regs() [insts.NumArchRegs]int32 {
	return m.regs
}

// ZeroFlag returns the architectural zero flag.
func (m *Machine) ZeroFlag() bool {
	return m.zeroFlag
}

// Memory returns the data memory.
func (m *Machine) Memory() *Memory {
	return m.memory
}

// Halted reports whether the machine has retired a HALT.
func (m *Machine) Halted() bool {
	return m.halted
}

// InstructionCount returns the number of instructions executed.
func (m *Machine) InstructionCount() uint64 {
	return m.instructionCount
}

// PC returns the current program counter.
func (m *Machine) PC() int32 {
	return m.pc
}

// Step executes a single instruction. It returns an error if the PC leaves
// the program or the instruction is not part of the ISA.
func (m *Machine) Step() error {
	if m.halted {
		return nil
	}

	idx := (m.pc - insts.CodeStartAddr) / insts.InstructionSize
	if idx < 0 || int(idx) >= len(m.code) {
		return fmt.Errorf("pc %d outside program", m.pc)
	}
	inst := m.code[idx]
	if !inst.IsValid() {
		return fmt.Errorf("invalid instruction at pc %d", m.pc)
	}

	nextPC := m.pc + insts.InstructionSize
	m.instructionCount++

	switch inst.Op {
	case insts.OpNOP:

	case insts.OpHALT:
		m.halted = true

	case insts.OpMOVC:
		m.regs[inst.Rd] = inst.Imm

	case insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR, insts.OpXOR,
		insts.OpMUL, insts.OpADDL, insts.OpSUBL:
		result := m.alu(inst)
		m.regs[inst.Rd] = result
		m.zeroFlag = result == 0

	case insts.OpLOAD:
		addr := m.regs[inst.Rs1] + inst.Imm
		m.regs[inst.Rd] = m.memory.Read(addr)

	case insts.OpSTORE:
		addr := m.regs[inst.Rs1] + inst.Imm
		m.memory.Write(addr, m.regs[inst.Rs2])

	case insts.OpBZ:
		if m.zeroFlag {
			nextPC = m.pc + insts.InstructionSize + inst.Imm
		}

	case insts.OpBNZ:
		if !m.zeroFlag {
			nextPC = m.pc + insts.InstructionSize + inst.Imm
		}

	case insts.OpJUMP:
		nextPC = m.regs[inst.Rs1] + inst.Imm

	case insts.OpJAL:
		nextPC = m.regs[inst.Rs1] + inst.Imm
		m.regs[inst.Rd] = m.pc + insts.InstructionSize
	}

	m.pc = nextPC
	return nil
}

func (m *Machine) alu(inst insts.Instruction) int32 {
	rs1 := m.regs[inst.Rs1]
	switch inst.Op {
	case insts.OpADD:
		return rs1 + m.regs[inst.Rs2]
	case insts.OpSUB:
		return rs1 - m.regs[inst.Rs2]
	case insts.OpAND:
		return rs1 & m.regs[inst.Rs2]
	case insts.OpOR:
		return rs1 | m.regs[inst.Rs2]
	case insts.OpXOR:
		return rs1 ^ m.regs[inst.Rs2]
	case insts.OpMUL:
		return rs1 * m.regs[inst.Rs2]
	case insts.OpADDL:
		return rs1 + inst.Imm
	case insts.OpSUBL:
		return rs1 - inst.Imm
	}
	return 0
}

// Run executes instructions until HALT or until maxInstructions have been
// executed (0 means no limit). It returns an error on a runaway program or
// an execution fault.
func (m *Machine) Run(maxInstructions uint64) error {
	for !m.halted {
		if maxInstructions > 0 && m.instructionCount >= maxInstructions {
			return fmt.Errorf("exceeded %d instructions without HALT", maxInstructions)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
