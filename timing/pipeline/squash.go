package pipeline

import "github.com/sarchlab/o3sim/insts"

// squash recovers from a taken branch resolving with control-flow ID cfid.
// The rename state rolls back to the branch's checkpoint, every instruction
// tagged with cfid or a younger ID is flushed (the branch's own reorder
// entry excepted, identified by ownROBIndex), and the front end restarts
// clean at the redirected PC.
func (p *Pipeline) squash(cfid, ownROBIndex int) {
	cp := p.cfq.Checkpoint(cfid)
	p.prf.Restore(cp.Regs)
	p.frontTable.Restore(cp.Front)

	for _, d := range p.cfq.SuffixFrom(cfid) {
		p.flushCFID(d, ownROBIndex)
	}
	p.cfq.TruncateFrom(cfid)

	// Flush the front-end latches; everything upstream of dispatch is
	// younger than the branch.
	p.fdLatch.Clear()
	p.dpLatch.Clear()
	p.fetchStalled = false
	p.decodeClosed = false

	p.currentCFID = -1

	p.recomputeAllocated()
}

// flushCFID removes every trace of one killed control-flow ID: IQ entries
// free, ROB entries become completed NOPs commit can drain, LSQ entries
// become completed NOPs the memory stage can pop, and the multiplier or
// memory unit drops a matching in-flight instruction.
func (p *Pipeline) flushCFID(cfid, ownROBIndex int) {
	for i := 0; i < IQSize; i++ {
		if e := p.iq.Entry(i); e.Allocated && e.CFID == cfid {
			p.iq.Free(i)
		}
	}

	for i := 0; i < ROBSize; i++ {
		e := p.rob.Entry(i)
		if !e.Allocated || e.CFID != cfid || i == ownROBIndex {
			continue
		}
		e.Op = insts.OpNOP
		e.Completed = true
		e.ArchRd = -1
		e.PhysRd = -1
		e.LSQIndex = -1
		e.CFID = -1
	}

	for i := 0; i < LSQSize; i++ {
		e := p.lsq.Entry(i)
		if !e.Allocated || e.CFID != cfid {
			continue
		}
		e.Op = insts.OpNOP
		e.Done = true
		e.AddrValid = false
		e.PhysRd = -1
		e.CFID = -1
	}

	if p.mulFU.Executing() && p.mulFU.CFID == cfid {
		p.mulFU.Kill()
	}
	if p.memFU.Executing() && p.memFU.CFID == cfid {
		p.memFU.Kill()
	}
}

// retagCFID rewrites the control-flow tag on every surviving entry. A
// not-taken branch frees its ID for reuse, so instructions that dispatched
// in its shadow must stop referencing it before a younger branch can claim
// the same ID.
func (p *Pipeline) retagCFID(from, to int) {
	for i := 0; i < IQSize; i++ {
		if e := p.iq.Entry(i); e.Allocated && e.CFID == from {
			e.CFID = to
		}
	}
	for i := 0; i < ROBSize; i++ {
		if e := p.rob.Entry(i); e.Allocated && e.CFID == from {
			e.CFID = to
		}
	}
	for i := 0; i < LSQSize; i++ {
		if e := p.lsq.Entry(i); e.Allocated && e.CFID == from {
			e.CFID = to
		}
	}
	if p.mulFU.CFID == from {
		p.mulFU.CFID = to
	}
	if p.memFU.CFID == from {
		p.memFU.CFID = to
	}
}

// recomputeAllocated rebuilds the physical-register free set after a
// checkpoint restore. A register stays allocated only while the frontend or
// backend table names it, or an in-flight reorder entry still owns it as a
// destination; everything a squashed instruction claimed after the
// checkpoint was captured comes back to the free pool.
func (p *Pipeline) recomputeAllocated() {
	var used [NumPhysRegs]bool

	for r := 0; r < numRenameEntries; r++ {
		if preg := p.frontTable.Get(r); preg >= 0 {
			used[preg] = true
		}
		if preg := p.backTable.Get(r); preg >= 0 {
			used[preg] = true
		}
	}

	for i := 0; i < ROBSize; i++ {
		e := p.rob.Entry(i)
		if e.Allocated && e.PhysRd >= 0 {
			used[e.PhysRd] = true
		}
	}

	for i := 0; i < NumPhysRegs; i++ {
		p.prf.Reg(i).Allocated = used[i]
	}
}
