package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Speculation and recovery", func() {
	Describe("JAL", func() {
		It("should preserve the link register across its own squash", func() {
			p := runProgram(`
MOVC,R1,#4000
JAL,R14,R1,#12
HALT
MOVC,R2,#5
JUMP,R14,#0
`, 300)
			Expect(p.ArchReg(14)).To(Equal(int32(4008)))
			Expect(p.ArchReg(2)).To(Equal(int32(5)))
			Expect(p.Stats().Squashes).To(Equal(uint64(2)), "JAL and JUMP both redirect")
		})
	})

	Describe("JUMP", func() {
		It("should always redirect through the register target", func() {
			p := runProgram(`
MOVC,R1,#4000
JUMP,R1,#12
MOVC,R2,#99
MOVC,R3,#1
HALT
`, 300)
			Expect(p.ArchReg(2)).To(Equal(int32(0)), "shadow instruction must not commit")
			Expect(p.ArchReg(3)).To(Equal(int32(1)))
		})
	})

	Describe("BNZ loop", func() {
		It("should iterate a countdown loop with repeated squashes", func() {
			p := runProgram(`
MOVC,R1,#5
MOVC,R2,#0
ADD,R2,R2,R1
SUBL,R1,R1,#1
BNZ,R1,#-12
HALT
`, 2000)
			Expect(p.ArchReg(1)).To(Equal(int32(0)))
			Expect(p.ArchReg(2)).To(Equal(int32(15)), "5+4+3+2+1")
			Expect(p.Stats().Squashes).To(Equal(uint64(4)), "taken on four of five iterations")
			Expect(p.Stats().Branches).To(Equal(uint64(5)))
		})
	})

	Describe("results produced before the branch", func() {
		It("should keep pre-branch results that complete inside the shadow", func() {
			// The multiply chain is older than the branch but still in
			// flight when the checkpoint is captured; its result must
			// survive the restore.
			p := runProgram(`
MOVC,R1,#3
MUL,R3,R1,R1
MUL,R3,R3,R1
SUBL,R2,R1,#3
BZ,R2,#8
MOVC,R4,#99
MOVC,R4,#100
ADD,R5,R3,R1
HALT
`, 300)
			Expect(p.ArchReg(3)).To(Equal(int32(27)))
			Expect(p.ArchReg(4)).To(Equal(int32(0)))
			Expect(p.ArchReg(5)).To(Equal(int32(30)))
		})
	})

	Describe("speculative state rollback", func() {
		It("should restore the rename mapping of a register overwritten in the shadow", func() {
			p := runProgram(`
MOVC,R1,#11
MOVC,R2,#0
BZ,R2,#8
MOVC,R1,#99
MOVC,R1,#100
ADD,R3,R1,R1
HALT
`, 300)
			// The shadow rewrote R1 twice; after the squash the ADD must
			// observe the pre-branch value.
			Expect(p.ArchReg(1)).To(Equal(int32(11)))
			Expect(p.ArchReg(3)).To(Equal(int32(22)))
		})

		It("should squash a speculative store before it reaches memory", func() {
			p := runProgram(`
MOVC,R1,#7
MOVC,R2,#100
MOVC,R3,#0
BZ,R3,#8
STORE,R1,R2,#0
MOVC,R4,#99
MOVC,R5,#1
HALT
`, 300)
			Expect(p.Memory().Read(100)).To(Equal(int32(0)), "squashed store must not write")
			Expect(p.ArchReg(4)).To(Equal(int32(0)))
			Expect(p.ArchReg(5)).To(Equal(int32(1)))
		})

		It("should squash a speculative HALT", func() {
			p := runProgram(`
MOVC,R1,#0
BZ,R1,#8
HALT
HALT
MOVC,R2,#1
HALT
`, 300)
			Expect(p.ArchReg(2)).To(Equal(int32(1)), "the shadow HALTs must not end the run")
		})
	})
})
