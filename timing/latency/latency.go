// Package latency provides the functional-unit timing model for the
// out-of-order pipeline.
package latency

import (
	"github.com/sarchlab/o3sim/insts"
)

// Table provides per-instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with the default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with a custom configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Issue returns the occupancy, in cycles, of the functional unit an
// instruction issues to from the instruction queue.
func (t *Table) Issue(op insts.Op) int {
	if op == insts.OpMUL {
		return t.config.MulLatency
	}
	return t.config.IntLatency
}

// Memory returns the memory-unit latency for a load or store.
func (t *Table) Memory() int {
	return t.config.MemLatency
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
