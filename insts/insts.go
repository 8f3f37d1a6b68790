// Package insts provides the instruction definitions for the O3Sim ISA.
//
// The ISA is a small RISC-style set: register-register arithmetic, constant
// moves, displacement-addressed loads and stores, and PC-relative or
// register-relative control flow. Instructions are fixed at one word
// (4 bytes) and carry up to three architectural register operands plus one
// literal.
package insts

import "fmt"

// Op identifies an O3Sim opcode.
type Op uint8

// O3Sim opcodes.
const (
	OpInvalid Op = iota
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpMUL
	OpMOVC
	OpLOAD
	OpSTORE
	OpBZ
	OpBNZ
	OpJUMP
	OpJAL
	OpADDL
	OpSUBL
	OpNOP
	OpHALT
)

// Machine-level constants shared by the emulator and the timing model.
const (
	// NumArchRegs is the number of programmer-visible registers (R0-R15).
	NumArchRegs = 16

	// ZeroFlagReg is the pseudo-register index used by the rename tables to
	// track the most recent producer of the zero flag.
	ZeroFlagReg = 16

	// CodeStartAddr is the address of the first instruction.
	CodeStartAddr = 4000

	// InstructionSize is the width of one instruction in bytes.
	InstructionSize = 4
)

var opNames = map[Op]string{
	OpInvalid: "INVALID",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpAND:     "AND",
	OpOR:      "OR",
	OpXOR:     "XOR",
	OpMUL:     "MUL",
	OpMOVC:    "MOVC",
	OpLOAD:    "LOAD",
	OpSTORE:   "STORE",
	OpBZ:      "BZ",
	OpBNZ:     "BNZ",
	OpJUMP:    "JUMP",
	OpJAL:     "JAL",
	OpADDL:    "ADDL",
	OpSUBL:    "SUBL",
	OpNOP:     "NOP",
	OpHALT:    "HALT",
}

// String returns the assembly mnemonic for the opcode.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// OpFromMnemonic maps an assembly mnemonic to its opcode.
// Unknown mnemonics map to OpInvalid.
func OpFromMnemonic(mnemonic string) Op {
	for op, name := range opNames {
		if op != OpInvalid && name == mnemonic {
			return op
		}
	}
	return OpInvalid
}

// FU identifies the functional-unit class an instruction executes on.
type FU uint8

// Functional-unit classes.
const (
	// FUNone marks instructions that never enter the instruction queue
	// (NOP, HALT, invalid).
	FUNone FU = iota

	// FUInt is the integer unit. It also performs address computation for
	// memory operations and resolves control flow.
	FUInt

	// FUMul is the multiplier unit.
	FUMul
)

// Instruction is one decoded instruction. It is immutable after parsing.
type Instruction struct {
	// Op is the opcode.
	Op Op

	// Rd is the destination architectural register, -1 if unused.
	Rd int

	// Rs1 is the first source architectural register, -1 if unused.
	Rs1 int

	// Rs2 is the second source architectural register, -1 if unused.
	Rs2 int

	// Imm is the literal operand.
	Imm int32
}

// Nop returns a NOP instruction with all operand slots cleared.
func Nop() Instruction {
	return Instruction{Op: OpNOP, Rd: -1, Rs1: -1, Rs2: -1}
}

// IsValid reports whether the opcode belongs to the ISA.
func (o Op) IsValid() bool {
	return o != OpInvalid
}

// IsNop reports whether the opcode is NOP.
func (o Op) IsNop() bool {
	return o == OpNOP
}

// IsHalt reports whether the opcode is HALT.
func (o Op) IsHalt() bool {
	return o == OpHALT
}

// HasRd reports whether the opcode writes an architectural register.
func (o Op) HasRd() bool {
	switch o {
	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpMUL, OpMOVC, OpLOAD,
		OpADDL, OpSUBL, OpJAL:
		return true
	default:
		return false
	}
}

// IsMemory reports whether the opcode accesses data memory.
func (o Op) IsMemory() bool {
	return o == OpLOAD || o == OpSTORE
}

// IsControlFlow reports whether the opcode can redirect the PC.
func (o Op) IsControlFlow() bool {
	switch o {
	case OpBZ, OpBNZ, OpJUMP, OpJAL:
		return true
	default:
		return false
	}
}

// SetsZeroFlag reports whether the opcode produces the zero flag. MOVC, JAL
// and memory operations write a register without touching the flag.
func (o Op) SetsZeroFlag() bool {
	switch o {
	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpMUL, OpADDL, OpSUBL:
		return true
	default:
		return false
	}
}

// UsesRs1 reports whether the first register source participates in
// dependence tracking. BZ/BNZ name a register in assembly but the decision
// reads the renamed zero-flag producer, not the register.
func (o Op) UsesRs1() bool {
	switch o {
	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpMUL, OpLOAD, OpSTORE,
		OpADDL, OpSUBL, OpJUMP, OpJAL:
		return true
	default:
		return false
	}
}

// UsesRs2 reports whether the second register source participates in
// dependence tracking.
func (o Op) UsesRs2() bool {
	switch o {
	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpMUL, OpSTORE:
		return true
	default:
		return false
	}
}

// ReadsZeroFlag reports whether the opcode consumes the zero flag.
func (o Op) ReadsZeroFlag() bool {
	return o == OpBZ || o == OpBNZ
}

// TargetFU returns the functional-unit class the opcode issues to. Memory
// operations issue to the integer unit for address computation; the access
// itself drains through the load-store queue.
func (o Op) TargetFU() FU {
	switch o {
	case OpMUL:
		return FUMul
	case OpNOP, OpHALT, OpInvalid:
		return FUNone
	default:
		return FUInt
	}
}

// Instruction-level views of the opcode predicates.

// IsValid reports whether the opcode belongs to the ISA.
func (i Instruction) IsValid() bool { return i.Op.IsValid() }

// IsNop reports whether the instruction is a NOP.
func (i Instruction) IsNop() bool { return i.Op.IsNop() }

// IsHalt reports whether the instruction is a HALT.
func (i Instruction) IsHalt() bool { return i.Op.IsHalt() }

// HasRd reports whether the instruction writes an architectural register.
func (i Instruction) HasRd() bool { return i.Op.HasRd() }

// IsMemory reports whether the instruction accesses data memory.
func (i Instruction) IsMemory() bool { return i.Op.IsMemory() }

// IsControlFlow reports whether the instruction can redirect the PC.
func (i Instruction) IsControlFlow() bool { return i.Op.IsControlFlow() }

// SetsZeroFlag reports whether the instruction produces the zero flag.
func (i Instruction) SetsZeroFlag() bool { return i.Op.SetsZeroFlag() }

// UsesRs1 reports whether the first register source participates in
// dependence tracking.
func (i Instruction) UsesRs1() bool { return i.Op.UsesRs1() }

// UsesRs2 reports whether the second register source participates in
// dependence tracking.
func (i Instruction) UsesRs2() bool { return i.Op.UsesRs2() }

// ReadsZeroFlag reports whether the instruction consumes the zero flag.
func (i Instruction) ReadsZeroFlag() bool { return i.Op.ReadsZeroFlag() }

// TargetFU returns the functional-unit class the instruction issues to.
func (i Instruction) TargetFU() FU { return i.Op.TargetFU() }

// String renders the instruction in its assembly form.
func (i Instruction) String() string {
	switch i.Op {
	case OpMOVC:
		return fmt.Sprintf("%s,R%d,#%d", i.Op, i.Rd, i.Imm)
	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpMUL:
		return fmt.Sprintf("%s,R%d,R%d,R%d", i.Op, i.Rd, i.Rs1, i.Rs2)
	case OpADDL, OpSUBL, OpLOAD:
		return fmt.Sprintf("%s,R%d,R%d,#%d", i.Op, i.Rd, i.Rs1, i.Imm)
	case OpSTORE:
		return fmt.Sprintf("%s,R%d,R%d,#%d", i.Op, i.Rs2, i.Rs1, i.Imm)
	case OpJAL:
		return fmt.Sprintf("%s,R%d,R%d,#%d", i.Op, i.Rd, i.Rs1, i.Imm)
	case OpJUMP:
		return fmt.Sprintf("%s,R%d,#%d", i.Op, i.Rs1, i.Imm)
	case OpBZ, OpBNZ:
		return fmt.Sprintf("%s,R%d,#%d", i.Op, i.Rs1, i.Imm)
	default:
		return i.Op.String()
	}
}
