package pipeline

import "github.com/sarchlab/o3sim/insts"

// doFetch reads the instruction at PC into the fetch/decode latch and
// advances PC. A held latch (decode did not drain it) backpressures fetch;
// an invalid opcode or a PC past the program end stalls the stage until a
// squash restarts the front end.
func (p *Pipeline) doFetch() {
	if p.fetchStalled || p.fdLatch.Valid {
		return
	}

	idx := (p.pc - insts.CodeStartAddr) / insts.InstructionSize
	if idx < 0 || int(idx) >= len(p.code) {
		p.fetchStalled = true
		return
	}

	inst := p.code[idx]
	if !inst.IsValid() {
		p.fetchStalled = true
		return
	}

	p.fdLatch = StageLatch{
		Valid:    true,
		PC:       p.pc,
		Inst:     inst,
		URd:      -1,
		URs1:     -1,
		URs2:     -1,
		ZFlagSrc: -1,
	}
	p.pc += insts.InstructionSize
}

// doDecode renames the instruction in the fetch/decode latch and forwards
// it to dispatch. If no physical register is free the latch is held and the
// stage retries next cycle.
func (p *Pipeline) doDecode() {
	if !p.fdLatch.Valid || p.decodeClosed {
		return
	}
	if p.dpLatch.Valid {
		return // dispatch has not drained its latch
	}

	out := p.fdLatch
	inst := out.Inst

	if inst.IsHalt() {
		// Nothing younger than a HALT may enter the back end.
		p.decodeClosed = true
		p.dpLatch = out
		p.fdLatch.Clear()
		return
	}
	if inst.IsNop() {
		p.dpLatch = out
		p.fdLatch.Clear()
		return
	}

	if inst.UsesRs1() {
		out.URs1 = p.frontTable.Get(inst.Rs1)
	}
	if inst.UsesRs2() {
		out.URs2 = p.frontTable.Get(inst.Rs2)
	}
	if inst.ReadsZeroFlag() {
		out.ZFlagSrc = p.frontTable.Get(insts.ZeroFlagReg)
	}

	if inst.HasRd() {
		preg := p.prf.Alloc()
		if preg < 0 {
			p.renameStalls++
			return // no free physical register; hold the latch and retry
		}
		out.URd = preg
		p.frontTable.Set(inst.Rd, preg)
		if inst.SetsZeroFlag() {
			p.frontTable.Set(insts.ZeroFlagReg, preg)
		}
	}

	p.dpLatch = out
	p.fdLatch.Clear()
}

// doDispatch allocates the back-end entries for the instruction in the
// decode/dispatch latch: an LSQ entry for memory operations, a ROB entry,
// and an IQ entry (HALT excepted). Branches additionally claim a
// control-flow ID and checkpoint the rename state. If any required
// structure is full, nothing is allocated and the stage retries next cycle.
func (p *Pipeline) doDispatch() {
	if !p.dpLatch.Valid {
		return
	}

	inst := p.dpLatch.Inst
	if inst.IsNop() {
		p.dpLatch.Clear()
		return
	}

	// Allocation is all-or-nothing: check every needed structure first.
	if p.rob.Full() ||
		(inst.IsMemory() && p.lsq.Full()) ||
		(!inst.IsHalt() && p.iq.Full()) ||
		(inst.IsControlFlow() && !p.cfq.HasFree()) {
		p.dispatchStalls++
		return
	}

	cfid := p.currentCFID

	lsqIdx := -1
	if inst.IsMemory() {
		lsqIdx = p.lsq.Alloc(LSQEntry{
			Allocated: true,
			PC:        p.dpLatch.PC,
			Op:        inst.Op,
			URs2:      p.dpLatch.URs2,
			PhysRd:    p.dpLatch.URd,
			ROBIndex:  -1, // fixed up below
			CFID:      cfid,
		})
	}

	if inst.IsControlFlow() {
		// This branch owns a fresh control-flow ID; everything dispatched
		// after it (itself included) is speculative relative to it.
		id := p.cfq.Alloc()
		p.cfq.Capture(id, &p.prf, &p.frontTable)
		p.currentCFID = id
		cfid = id
	}

	robIdx := p.rob.Alloc(ROBEntry{
		Allocated: true,
		Completed: inst.IsHalt(), // HALT needs no execution
		Op:        inst.Op,
		PC:        p.dpLatch.PC,
		ArchRd:    inst.Rd,
		PhysRd:    p.dpLatch.URd,
		LSQIndex:  lsqIdx,
		CFID:      cfid,
	})
	if lsqIdx >= 0 {
		p.lsq.Entry(lsqIdx).ROBIndex = robIdx
	}

	if !inst.IsHalt() {
		e := IQEntry{
			Allocated:     true,
			DispatchCycle: p.cycle,
			PC:            p.dpLatch.PC,
			Op:            inst.Op,
			Imm:           inst.Imm,
			URs1:          p.dpLatch.URs1,
			URs2:          p.dpLatch.URs2,
			ZFlagSrc:      p.dpLatch.ZFlagSrc,
			ROBIndex:      robIdx,
			LSQIndex:      lsqIdx,
			CFID:          cfid,
		}
		p.presetReadiness(&e, inst)
		p.iq.Alloc(e)
	}

	p.dpLatch.Clear()
}

// presetReadiness marks operands an opcode does not wait for and latches
// any source whose producer has already executed (or committed).
func (p *Pipeline) presetReadiness(e *IQEntry, inst insts.Instruction) {
	switch inst.Op {
	case insts.OpMOVC:
		e.URs1Ready = true
		e.URs2Ready = true
	case insts.OpBZ, insts.OpBNZ:
		// The decision reads the zero flag, not the register operands.
		e.URs1Ready = true
		e.URs2Ready = true
	case insts.OpLOAD, insts.OpADDL, insts.OpSUBL, insts.OpJAL,
		insts.OpJUMP:
		e.URs2Ready = true
	}

	if !e.URs1Ready {
		if e.URs1 < 0 {
			// No in-flight producer: the committed value is the operand.
			e.URs1Ready = true
			e.URs1Val = p.committedValue(inst.Rs1)
		} else if r := p.prf.Reg(e.URs1); r.Valid {
			e.URs1Ready = true
			e.URs1Val = r.Value
		}
	}

	if !e.URs2Ready {
		if e.URs2 < 0 {
			e.URs2Ready = true
			e.URs2Val = p.committedValue(inst.Rs2)
		} else if r := p.prf.Reg(e.URs2); r.Valid {
			e.URs2Ready = true
			e.URs2Val = r.Value
		}
		if e.URs2Ready && inst.Op == insts.OpSTORE && e.LSQIndex >= 0 {
			lsqe := p.lsq.Entry(e.LSQIndex)
			lsqe.URs2Ready = true
			lsqe.URs2Val = e.URs2Val
		}
	}

	if inst.ReadsZeroFlag() {
		if e.ZFlagSrc < 0 {
			e.ZFlagReady = true
			e.ZFlagVal = p.committedZeroFlag()
		} else if r := p.prf.Reg(e.ZFlagSrc); r.Valid {
			e.ZFlagReady = true
			e.ZFlagVal = r.ZeroFlag
		}
	} else {
		e.ZFlagReady = true
	}
}
