package pipeline

// Checkpoint is the microarchitectural state saved when a branch
// dispatches: a full copy of the physical register file and the frontend
// rename table as visible at that dispatch.
type Checkpoint struct {
	Regs  [NumPhysRegs]PhysReg
	Front [numRenameEntries]int
}

// CFQ tracks outstanding speculative control flow. Each live branch owns a
// control-flow ID from a bounded pool; the queue remembers the IDs in
// program order so a mispredict can flush its own shadow and everything
// younger.
type CFQ struct {
	inUse       [CFQSize]bool
	order       []int
	checkpoints [CFQSize]Checkpoint
}

// NewCFQ returns an empty control-flow queue.
func NewCFQ() CFQ {
	return CFQ{
		order: make([]int, 0, CFQSize),
	}
}

// HasFree reports whether a control-flow ID is available.
func (q *CFQ) HasFree() bool {
	for _, used := range q.inUse {
		if !used {
			return true
		}
	}
	return false
}

// Alloc claims a free control-flow ID, appends it to the program-order
// queue and returns it, or -1 if the pool is exhausted.
func (q *CFQ) Alloc() int {
	for id := range q.inUse {
		if !q.inUse[id] {
			q.inUse[id] = true
			q.order = append(q.order, id)
			return id
		}
	}
	return -1
}

// Live reports whether id is currently claimed.
func (q *CFQ) Live(id int) bool {
	return id >= 0 && id < CFQSize && q.inUse[id]
}

// Capture saves the current register file and frontend table under id.
func (q *CFQ) Capture(id int, prf *PhysRegFile, front *RenameTable) {
	q.checkpoints[id] = Checkpoint{
		Regs:  prf.Snapshot(),
		Front: front.Snapshot(),
	}
}

// Checkpoint returns the checkpoint owned by id.
func (q *CFQ) Checkpoint(id int) *Checkpoint {
	return &q.checkpoints[id]
}

// RecordResult writes a produced value into the register-file copy of every
// live checkpoint, so results that must survive a restore (the resolving
// branch's own destination, pre-branch completions) are not lost.
func (q *CFQ) RecordResult(preg int, value int32, zeroFlag bool) {
	for _, id := range q.order {
		r := &q.checkpoints[id].Regs[preg]
		r.Valid = true
		r.Value = value
		r.ZeroFlag = zeroFlag
	}
}

// Remove releases a control-flow ID whose branch resolved not-taken,
// dropping it from the program-order queue without disturbing its
// neighbors.
func (q *CFQ) Remove(id int) {
	for i, v := range q.order {
		if v == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	q.inUse[id] = false
}

// SuffixFrom returns the IDs from id through the queue tail in program
// order: the set a taken branch must flush. It returns nil if id is not
// live.
func (q *CFQ) SuffixFrom(id int) []int {
	for i, v := range q.order {
		if v == id {
			suffix := make([]int, len(q.order)-i)
			copy(suffix, q.order[i:])
			return suffix
		}
	}
	return nil
}

// TruncateFrom releases every ID from id through the queue tail.
func (q *CFQ) TruncateFrom(id int) {
	for i, v := range q.order {
		if v == id {
			for _, d := range q.order[i:] {
				q.inUse[d] = false
			}
			q.order = q.order[:i]
			return
		}
	}
}

// LiveIDs returns the live IDs in program order.
func (q *CFQ) LiveIDs() []int {
	ids := make([]int, len(q.order))
	copy(ids, q.order)
	return ids
}

// Len returns the number of outstanding branches.
func (q *CFQ) Len() int {
	return len(q.order)
}
