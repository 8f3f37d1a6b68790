package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/pipeline"
)

var _ = Describe("PhysRegFile", func() {
	var prf pipeline.PhysRegFile

	BeforeEach(func() {
		prf = pipeline.PhysRegFile{}
	})

	It("should allocate registers by linear scan", func() {
		Expect(prf.Alloc()).To(Equal(0))
		Expect(prf.Alloc()).To(Equal(1))
		prf.Free(0)
		Expect(prf.Alloc()).To(Equal(0))
	})

	It("should report exhaustion", func() {
		for i := 0; i < pipeline.NumPhysRegs; i++ {
			Expect(prf.Alloc()).To(Equal(i))
		}
		Expect(prf.Alloc()).To(Equal(-1))
	})

	It("should clear validity on allocation", func() {
		idx := prf.Alloc()
		prf.Reg(idx).Valid = true
		prf.Reg(idx).Value = 99
		prf.Free(idx)

		Expect(prf.Alloc()).To(Equal(idx))
		Expect(prf.Reg(idx).Valid).To(BeFalse())
	})

	It("should restore a snapshot wholesale", func() {
		idx := prf.Alloc()
		prf.Reg(idx).Value = 5
		snap := prf.Snapshot()

		prf.Reg(idx).Value = 50
		prf.Restore(snap)
		Expect(prf.Reg(idx).Value).To(Equal(int32(5)))
	})
})

var _ = Describe("RenameTable", func() {
	It("should start unmapped", func() {
		t := pipeline.NewRenameTable()
		for r := 0; r <= insts.ZeroFlagReg; r++ {
			Expect(t.Get(r)).To(Equal(-1))
		}
	})

	It("should track mappings and references", func() {
		t := pipeline.NewRenameTable()
		t.Set(3, 17)
		Expect(t.Get(3)).To(Equal(17))
		Expect(t.References(17)).To(BeTrue())
		Expect(t.References(16)).To(BeFalse())
	})
})

var _ = Describe("ROB", func() {
	var rob pipeline.ROB

	BeforeEach(func() {
		rob = pipeline.ROB{}
	})

	It("should allocate and retire in FIFO order", func() {
		first := rob.Alloc(pipeline.ROBEntry{Allocated: true, PC: 4000})
		second := rob.Alloc(pipeline.ROBEntry{Allocated: true, PC: 4004})
		Expect(second).To(Equal(first + 1))

		head, idx := rob.Head()
		Expect(idx).To(Equal(first))
		Expect(head.PC).To(Equal(int32(4000)))

		rob.PopHead()
		head, _ = rob.Head()
		Expect(head.PC).To(Equal(int32(4004)))
	})

	It("should wrap around the circular buffer", func() {
		for i := 0; i < pipeline.ROBSize; i++ {
			rob.Alloc(pipeline.ROBEntry{Allocated: true})
		}
		Expect(rob.Full()).To(BeTrue())

		rob.PopHead()
		Expect(rob.Full()).To(BeFalse())
		Expect(rob.Alloc(pipeline.ROBEntry{Allocated: true})).To(Equal(0))
		Expect(rob.Full()).To(BeTrue())
	})
})

var _ = Describe("IQ", func() {
	It("should reuse freed slots", func() {
		var iq pipeline.IQ
		idx := iq.Alloc(pipeline.IQEntry{Allocated: true, Op: insts.OpADD})
		Expect(idx).To(Equal(0))
		iq.Free(idx)
		Expect(iq.Alloc(pipeline.IQEntry{Allocated: true, Op: insts.OpSUB})).To(Equal(0))
	})

	It("should fill up to capacity", func() {
		var iq pipeline.IQ
		for i := 0; i < pipeline.IQSize; i++ {
			Expect(iq.Alloc(pipeline.IQEntry{Allocated: true})).To(Equal(i))
		}
		Expect(iq.Full()).To(BeTrue())
		Expect(iq.Alloc(pipeline.IQEntry{Allocated: true})).To(Equal(-1))
	})
})

var _ = Describe("LSQ", func() {
	It("should preserve FIFO order", func() {
		var lsq pipeline.LSQ
		lsq.Alloc(pipeline.LSQEntry{Allocated: true, Op: insts.OpSTORE, PC: 4000})
		lsq.Alloc(pipeline.LSQEntry{Allocated: true, Op: insts.OpLOAD, PC: 4004})

		head, _ := lsq.Head()
		Expect(head.Op).To(Equal(insts.OpSTORE))

		lsq.Pop()
		head, _ = lsq.Head()
		Expect(head.Op).To(Equal(insts.OpLOAD))

		lsq.Pop()
		Expect(lsq.Empty()).To(BeTrue())
	})
})

var _ = Describe("CFQ", func() {
	var cfq pipeline.CFQ

	BeforeEach(func() {
		cfq = pipeline.NewCFQ()
	})

	It("should hand out IDs in program order", func() {
		a := cfq.Alloc()
		b := cfq.Alloc()
		Expect(a).NotTo(Equal(b))
		Expect(cfq.LiveIDs()).To(Equal([]int{a, b}))
	})

	It("should exhaust after CFQSize allocations", func() {
		for i := 0; i < pipeline.CFQSize; i++ {
			Expect(cfq.Alloc()).NotTo(Equal(-1))
		}
		Expect(cfq.HasFree()).To(BeFalse())
		Expect(cfq.Alloc()).To(Equal(-1))
	})

	It("should remove a resolved ID from the middle of the queue", func() {
		a := cfq.Alloc()
		b := cfq.Alloc()
		c := cfq.Alloc()

		cfq.Remove(b)
		Expect(cfq.Live(b)).To(BeFalse())
		Expect(cfq.LiveIDs()).To(Equal([]int{a, c}))
	})

	It("should flush a suffix on a taken branch", func() {
		a := cfq.Alloc()
		b := cfq.Alloc()
		c := cfq.Alloc()

		Expect(cfq.SuffixFrom(b)).To(Equal([]int{b, c}))
		cfq.TruncateFrom(b)
		Expect(cfq.LiveIDs()).To(Equal([]int{a}))
		Expect(cfq.Live(b)).To(BeFalse())
		Expect(cfq.Live(c)).To(BeFalse())
	})

	It("should record results into live checkpoints only", func() {
		var prf pipeline.PhysRegFile
		front := pipeline.NewRenameTable()

		a := cfq.Alloc()
		cfq.Capture(a, &prf, &front)
		b := cfq.Alloc()
		cfq.Capture(b, &prf, &front)
		cfq.Remove(b)

		cfq.RecordResult(3, 42, false)
		Expect(cfq.Checkpoint(a).Regs[3].Valid).To(BeTrue())
		Expect(cfq.Checkpoint(a).Regs[3].Value).To(Equal(int32(42)))
		Expect(cfq.Checkpoint(b).Regs[3].Valid).To(BeFalse())
	})
})
