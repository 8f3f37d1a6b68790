package pipeline

import "github.com/sarchlab/o3sim/insts"

// doMemory steps the memory unit. At most one memory operation is in
// flight; the load-store queue head drains into the unit in program order,
// gated on the reorder-buffer head so memory operations never overtake
// older unretired work.
func (p *Pipeline) doMemory() {
	fu := &p.memFU
	fu.Busy--
	if fu.Busy == 0 {
		p.completeMemoryOp()
		return
	}
	if fu.Busy > 0 {
		return // access still in flight
	}

	// Unit is free. Drop squashed head entries so younger operations can
	// reach the unit, then try to hand off the head.
	for {
		head, _ := p.lsq.Head()
		if head == nil || !head.Done {
			break
		}
		p.lsq.Pop()
	}

	head, _ := p.lsq.Head()
	if head == nil || !head.AddrValid {
		return
	}

	robHead, robIdx := p.rob.Head()
	if robHead == nil || head.ROBIndex != robIdx {
		return // older non-memory work has not retired yet
	}

	// A store additionally needs its data operand.
	if head.Op == insts.OpSTORE && !head.URs2Ready {
		if head.URs2 >= 0 {
			if r := p.prf.Reg(head.URs2); r.Valid {
				head.URs2Ready = true
				head.URs2Val = r.Value
			}
		}
		if !head.URs2Ready {
			return
		}
	}

	fu.Op = head.Op
	fu.PC = head.PC
	fu.Addr = head.Addr
	fu.URs2Val = head.URs2Val
	fu.PhysRd = head.PhysRd
	fu.ROBIndex = head.ROBIndex
	// Reaching the unit requires being the ROB head, so the access is no
	// longer speculative regardless of the tag it dispatched under.
	fu.CFID = -1
	fu.Busy = p.lat.Memory() - 1 // the hand-off cycle counts

	if head.Op == insts.OpSTORE {
		// Nothing depends on a store; it retires at hand-off while the
		// write itself drains through the unit.
		p.lsq.Pop()
		p.rob.PopHead()
		p.committed++
	}

	if fu.Busy == 0 {
		p.completeMemoryOp()
	}
}

// completeMemoryOp performs the access when the unit countdown expires.
// Loads write back, broadcast, update the committed mapping and retire;
// stores write memory (their retirement happened at hand-off).
func (p *Pipeline) completeMemoryOp() {
	fu := &p.memFU

	switch fu.Op {
	case insts.OpLOAD:
		value := p.memory.Read(fu.Addr)
		p.complete(fu.PhysRd, value, false)

		robe := p.rob.Entry(fu.ROBIndex)
		robe.Completed = true
		p.retireDest(robe.ArchRd, fu.PhysRd, false)

		p.lsq.Pop()
		p.rob.PopHead()
		p.committed++

	case insts.OpSTORE:
		p.memory.Write(fu.Addr, fu.URs2Val)
	}
}
