package emu_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/emu"
	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/loader"
)

func TestEmu(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Emu Suite")
}

func parse(program string) []insts.Instruction {
	code, err := loader.Parse(strings.NewReader(strings.TrimSpace(program)))
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return code
}

var _ = Describe("Machine", func() {
	It("should execute constant moves and arithmetic", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#3
MOVC,R2,#4
ADD,R3,R1,R2
MUL,R4,R3,R2
SUBL,R5,R4,#8
HALT
`))
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(3)).To(Equal(int32(7)))
		Expect(m.Reg(4)).To(Equal(int32(28)))
		Expect(m.Reg(5)).To(Equal(int32(20)))
		Expect(m.Halted()).To(BeTrue())
		Expect(m.InstructionCount()).To(Equal(uint64(6)))
	})

	It("should track the zero flag through arithmetic only", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#5
SUB,R2,R1,R1
MOVC,R3,#9
BZ,R3,#8
MOVC,R4,#99
MOVC,R4,#100
HALT
`))
		// SUB produced zero and MOVC does not touch the flag, so BZ takes
		// and skips both shadow moves.
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(4)).To(Equal(int32(0)))
	})

	It("should start with the zero flag set", func() {
		m := emu.NewMachine(parse(`
BZ,R1,#4
MOVC,R2,#99
HALT
`))
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(2)).To(Equal(int32(0)))
	})

	It("should execute loads and stores", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#12
MOVC,R2,#100
STORE,R1,R2,#0
LOAD,R3,R2,#0
HALT
`))
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(3)).To(Equal(int32(12)))
		Expect(m.Memory().Read(100)).To(Equal(int32(12)))
	})

	It("should link and return through JAL and JUMP", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#4000
JAL,R14,R1,#16
ADDL,R3,R2,#1
HALT
MOVC,R2,#41
JUMP,R14,#0
`))
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(14)).To(Equal(int32(4008)))
		Expect(m.Reg(2)).To(Equal(int32(41)))
		Expect(m.Reg(3)).To(Equal(int32(42)))
	})

	It("should run a countdown loop", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#5
MOVC,R2,#0
ADD,R2,R2,R1
SUBL,R1,R1,#1
BNZ,R1,#-12
HALT
`))
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(2)).To(Equal(int32(15)))
	})

	It("should fault when the PC runs off the program", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#1
`))
		Expect(m.Run(0)).NotTo(Succeed())
	})

	It("should enforce the instruction budget", func() {
		m := emu.NewMachine(parse(`
MOVC,R1,#4000
JUMP,R1,#0
`))
		Expect(m.Run(100)).NotTo(Succeed())
	})

	It("should accept a pre-populated memory", func() {
		mem := emu.NewMemory()
		mem.Write(40, 77)
		m := emu.NewMachine(parse(`
MOVC,R1,#40
LOAD,R2,R1,#0
HALT
`), emu.WithMemory(mem))
		Expect(m.Run(0)).To(Succeed())
		Expect(m.Reg(2)).To(Equal(int32(77)))
	})
})

var _ = Describe("Memory", func() {
	It("should read back written words", func() {
		mem := emu.NewMemory()
		mem.Write(0, 5)
		mem.Write(emu.MemSize-1, -9)
		Expect(mem.Read(0)).To(Equal(int32(5)))
		Expect(mem.Read(emu.MemSize - 1)).To(Equal(int32(-9)))
	})

	It("should panic on an out-of-range address", func() {
		mem := emu.NewMemory()
		Expect(func() { mem.Read(emu.MemSize) }).To(Panic())
		Expect(func() { mem.Write(-1, 0) }).To(Panic())
	})
})
