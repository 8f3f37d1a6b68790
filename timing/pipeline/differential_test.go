package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/emu"
	"github.com/sarchlab/o3sim/insts"
)

// runReference executes a program on the in-order reference machine.
func runReference(program string) *emu.Machine {
	m := emu.NewMachine(mustParse(program))
	ExpectWithOffset(1, m.Run(100000)).To(Succeed())
	return m
}

// expectSameArchState runs a program on both machines and compares the
// committed architectural registers.
func expectSameArchState(program string) {
	p := runProgram(program, 10000)
	m := runReference(program)
	for r := 0; r < insts.NumArchRegs; r++ {
		ExpectWithOffset(1, p.ArchReg(r)).To(Equal(m.Reg(r)), "R%d", r)
	}
}

var _ = Describe("Differential against the in-order reference machine", func() {
	DescribeTable("committed state matches",
		expectSameArchState,

		Entry("independent arithmetic", `
MOVC,R1,#3
MOVC,R2,#4
MOVC,R3,#5
ADD,R4,R1,R2
SUB,R5,R3,R1
MUL,R6,R2,R3
XOR,R7,R1,R3
OR,R8,R1,R2
AND,R9,R2,R3
HALT
`),

		Entry("long dependency chain", `
MOVC,R1,#1
ADD,R2,R1,R1
ADD,R3,R2,R2
ADD,R4,R3,R3
ADD,R5,R4,R4
MUL,R6,R5,R5
SUBL,R7,R6,#56
HALT
`),

		Entry("write-after-write to one register", `
MOVC,R1,#1
MOVC,R1,#2
MOVC,R1,#3
ADDL,R2,R1,#10
MOVC,R1,#4
HALT
`),

		Entry("store then load chain", `
MOVC,R1,#21
MOVC,R2,#500
STORE,R1,R2,#0
LOAD,R3,R2,#0
ADD,R4,R3,R3
STORE,R4,R2,#4
LOAD,R5,R2,#4
HALT
`),

		Entry("taken branch over a store", `
MOVC,R1,#7
MOVC,R2,#100
MOVC,R3,#0
BZ,R3,#8
STORE,R1,R2,#0
MOVC,R4,#99
LOAD,R5,R2,#0
HALT
`),

		Entry("countdown loop", `
MOVC,R1,#6
MOVC,R2,#0
ADD,R2,R2,R1
SUBL,R1,R1,#1
BNZ,R1,#-12
HALT
`),

		Entry("memory copy loop", `
MOVC,R1,#3
MOVC,R2,#600
MOVC,R3,#700
LOAD,R4,R2,#0
STORE,R4,R3,#0
ADDL,R2,R2,#4
ADDL,R3,R3,#4
SUBL,R1,R1,#1
BNZ,R1,#-24
HALT
`),

		Entry("subroutine via JAL and JUMP", `
MOVC,R1,#4000
JAL,R14,R1,#16
ADDL,R3,R2,#1
HALT
MOVC,R2,#41
JUMP,R14,#0
`),

		Entry("flag tracked through renamed producers", `
MOVC,R1,#2
SUB,R2,R1,R1
BZ,R2,#8
MOVC,R3,#99
MOVC,R3,#100
ADDL,R4,R1,#1
BNZ,R4,#8
MOVC,R5,#77
MOVC,R5,#88
HALT
`),
	)

	It("agrees on memory contents after a store/load program", func() {
		program := `
MOVC,R1,#13
MOVC,R2,#800
STORE,R1,R2,#0
ADDL,R1,R1,#1
STORE,R1,R2,#4
LOAD,R3,R2,#0
LOAD,R4,R2,#4
HALT
`
		p := runProgram(program, 10000)
		m := runReference(program)
		Expect(p.Memory().Read(800)).To(Equal(m.Memory().Read(800)))
		Expect(p.Memory().Read(804)).To(Equal(m.Memory().Read(804)))
		Expect(p.ArchReg(3)).To(Equal(int32(13)))
		Expect(p.ArchReg(4)).To(Equal(int32(14)))
	})
})
