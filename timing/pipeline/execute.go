package pipeline

import "github.com/sarchlab/o3sim/insts"

// doExecute runs issue selection, then advances the integer and multiplier
// units. Selection runs first, so values broadcast by completions this
// cycle cannot be consumed by this cycle's issue.
func (p *Pipeline) doExecute() {
	p.doIssue()
	p.advanceIntFU()
	p.advanceMulFU()
}

// doIssue wakes up IQ entries whose producers have become valid, then
// selects the oldest fully-ready instruction for each free functional unit.
func (p *Pipeline) doIssue() {
	p.wakeup()

	if p.intFU.Idle() {
		if idx := p.selectOldest(insts.FUInt); idx >= 0 {
			p.issueTo(&p.intFU, idx)
		}
	}
	if p.mulFU.Idle() {
		if idx := p.selectOldest(insts.FUMul); idx >= 0 {
			p.issueTo(&p.mulFU, idx)
		}
	}
}

// wakeup upgrades readiness bits against the physical register file. This
// catches producers that completed between an entry's dispatch and the
// broadcasts it could observe.
func (p *Pipeline) wakeup() {
	for i := 0; i < IQSize; i++ {
		e := p.iq.Entry(i)
		if !e.Allocated {
			continue
		}

		if !e.URs1Ready && e.URs1 >= 0 {
			if r := p.prf.Reg(e.URs1); r.Valid {
				e.URs1Ready = true
				e.URs1Val = r.Value
			}
		}
		if !e.URs2Ready && e.URs2 >= 0 {
			if r := p.prf.Reg(e.URs2); r.Valid {
				e.URs2Ready = true
				e.URs2Val = r.Value
				if e.Op == insts.OpSTORE && e.LSQIndex >= 0 {
					lsqe := p.lsq.Entry(e.LSQIndex)
					lsqe.URs2Ready = true
					lsqe.URs2Val = r.Value
				}
			}
		}
		if !e.ZFlagReady && e.ZFlagSrc >= 0 {
			if r := p.prf.Reg(e.ZFlagSrc); r.Valid {
				e.ZFlagReady = true
				e.ZFlagVal = r.ZeroFlag
			}
		}
	}
}

// selectOldest returns the IQ index of the oldest eligible entry for the
// given functional-unit class, or -1. Ties on the dispatch cycle break
// toward the lowest index.
func (p *Pipeline) selectOldest(fu insts.FU) int {
	best := -1
	var bestCycle uint64
	for i := 0; i < IQSize; i++ {
		e := p.iq.Entry(i)
		if !e.Allocated {
			continue
		}
		if e.Op.TargetFU() != fu {
			continue
		}
		if !e.URs1Ready || !e.URs2Ready || !e.ZFlagReady {
			continue
		}
		if best < 0 || e.DispatchCycle < bestCycle {
			best = i
			bestCycle = e.DispatchCycle
		}
	}
	return best
}

// issueTo moves the IQ entry at idx onto a functional unit and frees the
// queue slot.
func (p *Pipeline) issueTo(fu *FuncUnit, idx int) {
	e := p.iq.Entry(idx)
	robe := p.rob.Entry(e.ROBIndex)

	fu.Op = e.Op
	fu.PC = e.PC
	fu.Imm = e.Imm
	fu.URs1Val = e.URs1Val
	fu.URs2Val = e.URs2Val
	fu.ZeroFlagIn = e.ZFlagVal
	fu.PhysRd = robe.PhysRd
	fu.ROBIndex = e.ROBIndex
	fu.CFID = robe.CFID
	fu.Busy = p.lat.Issue(e.Op)

	p.iq.Free(idx)
}

// advanceIntFU steps the integer unit. On completion it performs
// arithmetic writeback, memory address computation, or branch resolution.
func (p *Pipeline) advanceIntFU() {
	fu := &p.intFU
	fu.Busy--
	if fu.Busy != 0 {
		return
	}

	robe := p.rob.Entry(fu.ROBIndex)

	switch {
	case fu.Op == insts.OpLOAD || fu.Op == insts.OpSTORE:
		// Address computation; the access itself drains through the LSQ.
		lsqe := p.lsq.Entry(robe.LSQIndex)
		lsqe.Addr = fu.URs1Val + fu.Imm
		lsqe.AddrValid = true

	case fu.Op == insts.OpBZ || fu.Op == insts.OpBNZ ||
		fu.Op == insts.OpJUMP || fu.Op == insts.OpJAL:
		p.resolveBranch(fu, robe)

	default:
		result := p.intResult(fu)
		zeroFlag := fu.Op.SetsZeroFlag() && result == 0
		p.complete(fu.PhysRd, result, zeroFlag)
		robe.Completed = true
	}
}

// intResult computes the integer-unit result for arithmetic and logical
// opcodes.
func (p *Pipeline) intResult(fu *FuncUnit) int32 {
	switch fu.Op {
	case insts.OpMOVC:
		return fu.Imm
	case insts.OpADD:
		return fu.URs1Val + fu.URs2Val
	case insts.OpSUB:
		return fu.URs1Val - fu.URs2Val
	case insts.OpAND:
		return fu.URs1Val & fu.URs2Val
	case insts.OpOR:
		return fu.URs1Val | fu.URs2Val
	case insts.OpXOR:
		return fu.URs1Val ^ fu.URs2Val
	case insts.OpADDL:
		return fu.URs1Val + fu.Imm
	case insts.OpSUBL:
		return fu.URs1Val - fu.Imm
	}
	return 0
}

// advanceMulFU steps the multiplier unit.
func (p *Pipeline) advanceMulFU() {
	fu := &p.mulFU
	fu.Busy--
	if fu.Busy != 0 {
		return
	}
	if fu.Op != insts.OpMUL {
		return // flushed slot draining out
	}

	robe := p.rob.Entry(fu.ROBIndex)
	result := fu.URs1Val * fu.URs2Val
	p.complete(fu.PhysRd, result, result == 0)
	robe.Completed = true
}

// resolveBranch decides a control-flow instruction on the integer unit.
// Taken branches redirect PC and squash their shadow; not-taken branches
// release their control-flow ID. Either way the speculative region ends.
func (p *Pipeline) resolveBranch(fu *FuncUnit, robe *ROBEntry) {
	p.branches++

	taken := false
	var target int32
	switch fu.Op {
	case insts.OpJUMP:
		taken = true
		target = fu.URs1Val + fu.Imm
	case insts.OpJAL:
		taken = true
		target = fu.URs1Val + fu.Imm
	case insts.OpBZ:
		taken = fu.ZeroFlagIn
		target = fu.PC + insts.InstructionSize + fu.Imm
	case insts.OpBNZ:
		taken = !fu.ZeroFlagIn
		target = fu.PC + insts.InstructionSize + fu.Imm
	}

	if fu.Op == insts.OpJAL {
		// The link register is the branch's own side effect; complete also
		// records it into the live checkpoints so a squash restore keeps it.
		p.complete(fu.PhysRd, fu.PC+insts.InstructionSize, false)
	}

	robe.Completed = true

	if taken {
		p.pc = target
		p.squash(fu.CFID, fu.ROBIndex)
		p.squashes++
		robe.CFID = -1
		return
	}

	// Not taken: the shadow was the correct path. Untag it before the ID
	// returns to the free list.
	p.retagCFID(fu.CFID, -1)
	p.cfq.Remove(fu.CFID)
	p.currentCFID = -1
}
