package insts_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/insts"
)

func TestInsts(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Insts Suite")
}

var _ = Describe("Op", func() {
	Describe("OpFromMnemonic", func() {
		It("should map every mnemonic to its opcode", func() {
			Expect(insts.OpFromMnemonic("ADD")).To(Equal(insts.OpADD))
			Expect(insts.OpFromMnemonic("MOVC")).To(Equal(insts.OpMOVC))
			Expect(insts.OpFromMnemonic("HALT")).To(Equal(insts.OpHALT))
		})

		It("should map unknown mnemonics to OpInvalid", func() {
			Expect(insts.OpFromMnemonic("FOO")).To(Equal(insts.OpInvalid))
			Expect(insts.OpFromMnemonic("add")).To(Equal(insts.OpInvalid))
		})

		It("should round-trip through String", func() {
			ops := []insts.Op{
				insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR,
				insts.OpXOR, insts.OpMUL, insts.OpMOVC, insts.OpLOAD,
				insts.OpSTORE, insts.OpBZ, insts.OpBNZ, insts.OpJUMP,
				insts.OpJAL, insts.OpADDL, insts.OpSUBL, insts.OpNOP,
				insts.OpHALT,
			}
			for _, op := range ops {
				Expect(insts.OpFromMnemonic(op.String())).To(Equal(op))
			}
		})
	})

	Describe("TargetFU", func() {
		It("should route MUL to the multiplier", func() {
			Expect(insts.OpMUL.TargetFU()).To(Equal(insts.FUMul))
		})

		It("should route memory and control flow to the integer unit", func() {
			Expect(insts.OpLOAD.TargetFU()).To(Equal(insts.FUInt))
			Expect(insts.OpSTORE.TargetFU()).To(Equal(insts.FUInt))
			Expect(insts.OpBZ.TargetFU()).To(Equal(insts.FUInt))
			Expect(insts.OpJAL.TargetFU()).To(Equal(insts.FUInt))
		})

		It("should keep NOP and HALT off the units", func() {
			Expect(insts.OpNOP.TargetFU()).To(Equal(insts.FUNone))
			Expect(insts.OpHALT.TargetFU()).To(Equal(insts.FUNone))
		})
	})
})

var _ = Describe("Instruction", func() {
	It("should render the assembly form", func() {
		inst := insts.Instruction{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 2}
		Expect(inst.String()).To(Equal("ADD,R3,R1,R2"))

		inst = insts.Instruction{Op: insts.OpMOVC, Rd: 1, Imm: 7}
		Expect(inst.String()).To(Equal("MOVC,R1,#7"))

		inst = insts.Instruction{Op: insts.OpSTORE, Rs1: 2, Rs2: 1, Imm: 4}
		Expect(inst.String()).To(Equal("STORE,R1,R2,#4"))
	})

	It("should build a clean NOP", func() {
		nop := insts.Nop()
		Expect(nop.IsNop()).To(BeTrue())
		Expect(nop.Rd).To(Equal(-1))
		Expect(nop.HasRd()).To(BeFalse())
	})
})
