package pipeline

import (
	"fmt"
	"io"

	"github.com/sarchlab/o3sim/insts"
)

// WriteState dumps a per-cycle view of the machine to w: front-end latches,
// functional units, queue occupancy and the committed register file. The
// REPL's display and step commands use it.
func (p *Pipeline) WriteState(w io.Writer) {
	fmt.Fprintf(w, "--------------------------------\n")
	fmt.Fprintf(w, "Clock Cycle # %d\n", p.cycle)
	fmt.Fprintf(w, "--------------------------------\n")
	fmt.Fprintf(w, "PC: %d\n", p.pc)

	writeLatch := func(name string, l *StageLatch) {
		if !l.Valid {
			fmt.Fprintf(w, "%-10s <empty>\n", name)
			return
		}
		fmt.Fprintf(w, "%-10s pc=%d %s\n", name, l.PC, l.Inst)
	}
	writeLatch("Fetch", &p.fdLatch)
	writeLatch("Decode", &p.dpLatch)

	writeFU := func(name string, fu *FuncUnit) {
		if !fu.Executing() {
			fmt.Fprintf(w, "%-10s <idle>\n", name)
			return
		}
		fmt.Fprintf(w, "%-10s pc=%d %s busy=%d\n", name, fu.PC, fu.Op, fu.Busy)
	}
	writeFU("IntFU", &p.intFU)
	writeFU("MulFU", &p.mulFU)
	writeFU("MemFU", &p.memFU)

	fmt.Fprintf(w, "ROB: %d/%d  IQ: %d/%d  LSQ: %d/%d  branches outstanding: %d\n",
		p.rob.Count(), ROBSize, p.iq.Count(), IQSize, p.lsq.Count(), LSQSize, p.cfq.Len())

	fmt.Fprintf(w, "Committed registers:\n")
	for r := 0; r < insts.NumArchRegs; r++ {
		fmt.Fprintf(w, "  R%-2d = %-11d", r, p.ArchReg(r))
		if (r+1)%4 == 0 {
			fmt.Fprintln(w)
		}
	}
}

// Validate checks the structural invariants of the machine. Tests call it
// after every cycle; a non-nil error indicates a simulator bug.
func (p *Pipeline) Validate() error {
	// Rename tables map into {-1} ∪ [0, NumPhysRegs).
	for r := 0; r < numRenameEntries; r++ {
		for name, t := range map[string]*RenameTable{
			"frontend": &p.frontTable,
			"backend":  &p.backTable,
		} {
			if preg := t.Get(r); preg < -1 || preg >= NumPhysRegs {
				return fmt.Errorf("%s table entry %d out of range: %d", name, r, preg)
			}
		}
	}

	// A free physical register must not appear in the frontend table.
	for r := 0; r < numRenameEntries; r++ {
		preg := p.frontTable.Get(r)
		if preg >= 0 && !p.prf.Reg(preg).Allocated {
			return fmt.Errorf("frontend table entry %d names free physical register %d", r, preg)
		}
	}

	// ROB occupancy is the contiguous slice [head, tail).
	for i := 0; i < ROBSize; i++ {
		inWindow := false
		for k, idx := 0, p.rob.HeadIndex(); k < p.rob.Count(); k, idx = k+1, (idx+1)%ROBSize {
			if idx == i {
				inWindow = true
				break
			}
		}
		if p.rob.Entry(i).Allocated != inWindow {
			return fmt.Errorf("ROB entry %d allocation disagrees with [head, tail) window", i)
		}
	}

	// Every speculative IQ entry references a live control-flow ID.
	for i := 0; i < IQSize; i++ {
		e := p.iq.Entry(i)
		if e.Allocated && e.CFID >= 0 && !p.cfq.Live(e.CFID) {
			return fmt.Errorf("IQ entry %d references dead cfid %d", i, e.CFID)
		}
	}

	// No reorder entry is in flight on two functional units at once.
	busy := map[int]string{}
	for name, fu := range map[string]*FuncUnit{
		"int": &p.intFU, "mul": &p.mulFU, "mem": &p.memFU,
	} {
		if !fu.Executing() || fu.ROBIndex < 0 {
			continue
		}
		if other, ok := busy[fu.ROBIndex]; ok {
			return fmt.Errorf("ROB index %d executing on both %s and %s", fu.ROBIndex, other, name)
		}
		busy[fu.ROBIndex] = name
	}

	// Memory operations drain in FIFO order: once an undone entry is seen,
	// only squashed entries behind it may be done.
	seenUndone := false
	var orderErr error
	p.lsq.ForEachInOrder(func(idx int, e *LSQEntry) {
		if orderErr != nil {
			return
		}
		if !e.Done {
			seenUndone = true
			return
		}
		if seenUndone && e.Op != insts.OpNOP {
			orderErr = fmt.Errorf("LSQ entry %d completed ahead of an older operation", idx)
		}
	})
	if orderErr != nil {
		return orderErr
	}

	return nil
}
