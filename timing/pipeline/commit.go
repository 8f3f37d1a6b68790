package pipeline

import "github.com/sarchlab/o3sim/insts"

// doCommit retires up to MaxCommit completed entries from the reorder
// buffer head. Commit is the sole writer of the backend rename table during
// normal execution and the sole release point for displaced physical
// registers. Loads and stores retire in the memory stage; by the time a
// memory entry reaches the head uncompleted, commit simply waits.
func (p *Pipeline) doCommit() {
	for n := 0; n < MaxCommit; n++ {
		robe, _ := p.rob.Head()
		if robe == nil || !robe.Completed {
			return
		}

		if robe.Op == insts.OpHALT {
			if p.memFU.Executing() {
				return // let an outstanding store drain first
			}
			p.rob.PopHead()
			p.committed++
			p.done = true
			return
		}

		if robe.Op.IsMemory() {
			return // retired by the memory stage
		}

		if robe.PhysRd >= 0 {
			p.retireDest(robe.ArchRd, robe.PhysRd, robe.Op.SetsZeroFlag())
		}

		p.rob.PopHead()
		p.committed++
	}
}

// retireDest moves a destination mapping into the committed state: the
// architectural map and backend table point at the new physical register,
// and any displaced register that no committed mapping still names is
// freed.
func (p *Pipeline) retireDest(archRd, physRd int, setsZeroFlag bool) {
	oldRd := p.backTable.Get(archRd)
	oldFlag := -1

	p.archMap.Set(archRd, physRd)
	p.backTable.Set(archRd, physRd)
	if setsZeroFlag {
		oldFlag = p.backTable.Get(insts.ZeroFlagReg)
		p.archMap.Set(insts.ZeroFlagReg, physRd)
		p.backTable.Set(insts.ZeroFlagReg, physRd)
	}

	p.releaseIfUnreferenced(oldRd, physRd)
	p.releaseIfUnreferenced(oldFlag, physRd)
}

// releaseIfUnreferenced frees a displaced physical register unless it is
// the incoming mapping or the backend table still names it. The zero-flag
// pseudo-entry aliases its producer's register, so a displaced register may
// legitimately remain live under another name.
func (p *Pipeline) releaseIfUnreferenced(preg, incoming int) {
	if preg < 0 || preg == incoming {
		return
	}
	if p.backTable.References(preg) {
		return
	}
	p.prf.Free(preg)
}
