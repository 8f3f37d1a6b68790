// Package pipeline implements the out-of-order superscalar pipeline model.
//
// The pipeline executes an assembly program one clock cycle at a time
// through seven logical stages:
//
//   - Fetch (F): read the instruction at PC from code memory
//   - Decode/Rename (DRF): rename sources, allocate the destination
//     physical register
//   - Dispatch (DP): allocate ROB/IQ/(LSQ) entries, checkpoint on branches
//   - Issue (IS): select the oldest ready instruction per functional unit
//   - Execute (EX): advance functional units, broadcast results
//   - Memory (MEM): drain the load-store queue in program order
//   - Commit (CM): retire reorder-buffer head entries in program order
//
// Register renaming flows through a unified physical register file; control
// flow executes speculatively under the not-taken assumption with full
// checkpoint recovery on a taken branch.
package pipeline

import (
	"github.com/sarchlab/o3sim/emu"
	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/latency"
)

// Pipeline is the out-of-order engine. One Tick advances exactly one
// simulated cycle.
type Pipeline struct {
	code   []insts.Instruction
	memory *emu.Memory
	lat    *latency.Table

	pc    int32
	cycle uint64

	prf        PhysRegFile
	frontTable RenameTable
	backTable  RenameTable
	archMap    RenameTable

	rob ROB
	iq  IQ
	lsq LSQ

	intFU FuncUnit
	mulFU FuncUnit
	memFU FuncUnit

	cfq         CFQ
	currentCFID int

	// Front-end latches.
	fdLatch StageLatch // fetch → decode
	dpLatch StageLatch // decode → dispatch

	// fetchStalled latches when the PC leaves the program or an invalid
	// opcode is fetched, and stays set until a squash restarts the front end.
	fetchStalled bool

	// decodeClosed blocks decode once a HALT has passed through, so
	// wrong-path fetches behind it never allocate resources.
	decodeClosed bool

	done bool

	// Statistics.
	committed      uint64
	branches       uint64
	squashes       uint64
	dispatchStalls uint64
	renameStalls   uint64
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithMemory supplies a pre-populated data memory.
func WithMemory(m *emu.Memory) Option {
	return func(p *Pipeline) {
		p.memory = m
	}
}

// WithLatencyTable sets a custom functional-unit latency table.
func WithLatencyTable(t *latency.Table) Option {
	return func(p *Pipeline) {
		p.lat = t
	}
}

// NewPipeline creates a pipeline for the given program.
func NewPipeline(code []insts.Instruction, opts ...Option) *Pipeline {
	p := &Pipeline{
		code:        code,
		pc:          insts.CodeStartAddr,
		frontTable:  NewRenameTable(),
		backTable:   NewRenameTable(),
		archMap:     NewRenameTable(),
		cfq:         NewCFQ(),
		currentCFID: -1,
	}
	p.fdLatch.Clear()
	p.dpLatch.Clear()
	p.intFU.Kill()
	p.mulFU.Kill()
	p.memFU.Kill()

	for _, opt := range opts {
		opt(p)
	}
	if p.memory == nil {
		p.memory = emu.NewMemory()
	}
	if p.lat == nil {
		p.lat = latency.NewTable()
	}

	return p
}

// Tick advances the pipeline by one cycle. Stages run in reverse program
// order so every latch is read before its producer overwrites it.
func (p *Pipeline) Tick() {
	if p.done {
		return
	}

	p.cycle++

	p.doCommit()
	p.doMemory()
	p.doExecute()
	p.doDispatch()
	p.doDecode()
	p.doFetch()
}

// RunCycles advances the pipeline by up to n cycles. It returns true if the
// simulation is still running, false once HALT has retired.
func (p *Pipeline) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !p.done; i++ {
		p.Tick()
	}
	return !p.done
}

// Done reports whether a HALT has retired with the memory unit drained.
func (p *Pipeline) Done() bool {
	return p.done
}

// Cycle returns the number of cycles simulated so far.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// PC returns the fetch program counter.
func (p *Pipeline) PC() int32 {
	return p.pc
}

// Memory returns the data memory.
func (p *Pipeline) Memory() *emu.Memory {
	return p.memory
}

// ArchReg returns the committed value of architectural register r, or 0 if
// the register has never been written.
func (p *Pipeline) ArchReg(r int) int32 {
	preg := p.archMap.Get(r)
	if preg < 0 {
		return 0
	}
	return p.prf.Reg(preg).Value
}

// ArchRegs returns the committed architectural register file.
func (p *Pipeline) ArchRegs() [insts.NumArchRegs]int32 {
	var regs [insts.NumArchRegs]int32
	for r := range regs {
		regs[r] = p.ArchReg(r)
	}
	return regs
}

// Stats holds pipeline performance counters.
type Stats struct {
	// Cycles simulated.
	Cycles uint64

	// Committed is the number of instructions retired.
	Committed uint64

	// Branches resolved.
	Branches uint64

	// Squashes performed (taken branches).
	Squashes uint64

	// DispatchStalls counts cycles dispatch could not allocate.
	DispatchStalls uint64

	// RenameStalls counts cycles decode found no free physical register.
	RenameStalls uint64

	// CPI is cycles per committed instruction.
	CPI float64
}

// Stats returns the pipeline performance counters.
func (p *Pipeline) Stats() Stats {
	s := Stats{
		Cycles:         p.cycle,
		Committed:      p.committed,
		Branches:       p.branches,
		Squashes:       p.squashes,
		DispatchStalls: p.dispatchStalls,
		RenameStalls:   p.renameStalls,
	}
	if s.Committed > 0 {
		s.CPI = float64(s.Cycles) / float64(s.Committed)
	}
	return s
}

// committedValue reads the committed value of architectural register r
// through the backend rename table.
func (p *Pipeline) committedValue(r int) int32 {
	if r < 0 {
		return 0
	}
	preg := p.backTable.Get(r)
	if preg < 0 {
		return 0
	}
	return p.prf.Reg(preg).Value
}

// committedZeroFlag reads the committed zero flag through the backend
// rename table. With no producer on record the flag reads as set: every
// register holds zero before any arithmetic commits.
func (p *Pipeline) committedZeroFlag() bool {
	preg := p.backTable.Get(insts.ZeroFlagReg)
	if preg < 0 {
		return true
	}
	return p.prf.Reg(preg).ZeroFlag
}

// complete writes a produced result to the physical register file, mirrors
// it into every live checkpoint, and broadcasts it to waiting consumers.
func (p *Pipeline) complete(preg int, value int32, zeroFlag bool) {
	r := p.prf.Reg(preg)
	r.Value = value
	r.Valid = true
	r.ZeroFlag = zeroFlag

	p.cfq.RecordResult(preg, value, zeroFlag)
	p.broadcast(preg, value, zeroFlag)
}

// broadcast wakes up IQ and LSQ entries waiting on physical register preg.
func (p *Pipeline) broadcast(preg int, value int32, zeroFlag bool) {
	for i := 0; i < IQSize; i++ {
		e := p.iq.Entry(i)
		if !e.Allocated {
			continue
		}
		if e.URs1 == preg {
			e.URs1Ready = true
			e.URs1Val = value
		}
		if e.URs2 == preg {
			e.URs2Ready = true
			e.URs2Val = value
		}
		if e.ZFlagSrc == preg {
			e.ZFlagReady = true
			e.ZFlagVal = zeroFlag
		}
	}

	for i := 0; i < LSQSize; i++ {
		e := p.lsq.Entry(i)
		if !e.Allocated {
			continue
		}
		if e.URs2 == preg {
			e.URs2Ready = true
			e.URs2Val = value
		}
	}
}
