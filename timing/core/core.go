// Package core provides the cycle-accurate CPU core model.
// It wraps the out-of-order pipeline to provide a high-level interface.
package core

import (
	"io"

	"github.com/sarchlab/o3sim/emu"
	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/pipeline"
)

// Core represents one out-of-order CPU core.
type Core struct {
	// Pipeline is the underlying out-of-order engine.
	Pipeline *pipeline.Pipeline
}

// NewCore creates a Core for the given program.
func NewCore(code []insts.Instruction, opts ...pipeline.Option) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(code, opts...),
	}
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Done reports whether the core has retired a HALT.
func (c *Core) Done() bool {
	return c.Pipeline.Done()
}

// Cycle returns the number of cycles simulated so far.
func (c *Core) Cycle() uint64 {
	return c.Pipeline.Cycle()
}

// RunCycles executes up to n cycles. It returns true if the core is still
// running, false once the simulation completed.
func (c *Core) RunCycles(n uint64) bool {
	return c.Pipeline.RunCycles(n)
}

// RunCyclesDisplayed executes up to n cycles, dumping the machine state to
// w after each one.
func (c *Core) RunCyclesDisplayed(n uint64, w io.Writer) bool {
	for i := uint64(0); i < n && !c.Pipeline.Done(); i++ {
		c.Pipeline.Tick()
		c.Pipeline.WriteState(w)
	}
	return !c.Pipeline.Done()
}

// ArchReg returns the committed value of architectural register r.
func (c *Core) ArchReg(r int) int32 {
	return c.Pipeline.ArchReg(r)
}

// Memory returns the core's data memory.
func (c *Core) Memory() *emu.Memory {
	return c.Pipeline.Memory()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() pipeline.Stats {
	return c.Pipeline.Stats()
}
