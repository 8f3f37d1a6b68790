// Package loader parses O3Sim assembly programs.
//
// A program is a text file with one instruction per line. Each line is a
// comma-separated token list: the opcode first, then register references
// written as R<n> and literals written as #<n>. Example:
//
//	MOVC,R1,#7
//	ADD,R3,R1,R2
//	HALT
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/o3sim/insts"
)

// Load reads and parses the assembly program at path.
func Load(path string) ([]insts.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer func() { _ = f.Close() }()

	code, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// Parse reads an assembly program from r. Blank lines are skipped.
// The returned slice holds instructions in program order; the instruction
// at index i lives at address CodeStartAddr + 4*i.
func Parse(r io.Reader) ([]insts.Instruction, error) {
	var code []insts.Instruction

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		inst, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		code = append(code, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("empty program")
	}

	return code, nil
}

// operandValue strips the leading character (R or #) and parses the rest as
// a decimal integer.
func operandValue(token string) (int, error) {
	token = strings.TrimSpace(token)
	if len(token) < 2 {
		return 0, fmt.Errorf("malformed operand %q", token)
	}
	v, err := strconv.Atoi(token[1:])
	if err != nil {
		return 0, fmt.Errorf("malformed operand %q", token)
	}
	return v, nil
}

func regOperand(token string) (int, error) {
	r, err := operandValue(token)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(strings.TrimSpace(token), "R") {
		return 0, fmt.Errorf("expected register, got %q", token)
	}
	if r < 0 || r >= insts.NumArchRegs {
		return 0, fmt.Errorf("register %q out of range", token)
	}
	return r, nil
}

func immOperand(token string) (int32, error) {
	if !strings.HasPrefix(strings.TrimSpace(token), "#") {
		return 0, fmt.Errorf("expected literal, got %q", token)
	}
	v, err := operandValue(token)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func parseLine(line string) (insts.Instruction, error) {
	tokens := strings.Split(line, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}

	op := insts.OpFromMnemonic(tokens[0])
	inst := insts.Instruction{Op: op, Rd: -1, Rs1: -1, Rs2: -1}
	if op == insts.OpInvalid {
		return inst, fmt.Errorf("unknown opcode %q", tokens[0])
	}

	var err error
	switch op {
	case insts.OpNOP, insts.OpHALT:
		if len(tokens) != 1 {
			return inst, fmt.Errorf("%s takes no operands", op)
		}

	case insts.OpMOVC: // MOVC rd,#imm
		if len(tokens) != 3 {
			return inst, fmt.Errorf("%s expects 2 operands", op)
		}
		if inst.Rd, err = regOperand(tokens[1]); err != nil {
			return inst, err
		}
		if inst.Imm, err = immOperand(tokens[2]); err != nil {
			return inst, err
		}

	case insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR, insts.OpXOR,
		insts.OpMUL: // op rd,rs1,rs2
		if len(tokens) != 4 {
			return inst, fmt.Errorf("%s expects 3 operands", op)
		}
		if inst.Rd, err = regOperand(tokens[1]); err != nil {
			return inst, err
		}
		if inst.Rs1, err = regOperand(tokens[2]); err != nil {
			return inst, err
		}
		if inst.Rs2, err = regOperand(tokens[3]); err != nil {
			return inst, err
		}

	case insts.OpADDL, insts.OpSUBL, insts.OpLOAD,
		insts.OpJAL: // op rd,rs1,#imm
		if len(tokens) != 4 {
			return inst, fmt.Errorf("%s expects 3 operands", op)
		}
		if inst.Rd, err = regOperand(tokens[1]); err != nil {
			return inst, err
		}
		if inst.Rs1, err = regOperand(tokens[2]); err != nil {
			return inst, err
		}
		if inst.Imm, err = immOperand(tokens[3]); err != nil {
			return inst, err
		}

	case insts.OpSTORE: // STORE rs2,rs1,#imm
		if len(tokens) != 4 {
			return inst, fmt.Errorf("%s expects 3 operands", op)
		}
		if inst.Rs2, err = regOperand(tokens[1]); err != nil {
			return inst, err
		}
		if inst.Rs1, err = regOperand(tokens[2]); err != nil {
			return inst, err
		}
		if inst.Imm, err = immOperand(tokens[3]); err != nil {
			return inst, err
		}

	case insts.OpJUMP, insts.OpBZ, insts.OpBNZ: // op rs1,#imm
		if len(tokens) != 3 {
			return inst, fmt.Errorf("%s expects 2 operands", op)
		}
		if inst.Rs1, err = regOperand(tokens[1]); err != nil {
			return inst, err
		}
		if inst.Imm, err = immOperand(tokens[2]); err != nil {
			return inst, err
		}
	}

	return inst, nil
}
