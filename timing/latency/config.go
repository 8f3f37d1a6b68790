package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the execution latency, in cycles, of each functional
// unit.
type TimingConfig struct {
	// IntLatency is the integer-unit latency. It covers arithmetic,
	// logical ops, constant moves, address computation and branch
	// resolution. Default: 1 cycle.
	IntLatency int `json:"int_latency"`

	// MulLatency is the multiplier-unit latency. Default: 2 cycles.
	MulLatency int `json:"mul_latency"`

	// MemLatency is the memory-unit latency, counted from the cycle a
	// load/store queue entry is handed to the unit. Default: 3 cycles.
	MemLatency int `json:"mem_latency"`
}

// DefaultTimingConfig returns the default latency values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		IntLatency: 1,
		MulLatency: 2,
		MemLatency: 3,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from the
// file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are positive.
func (c *TimingConfig) Validate() error {
	if c.IntLatency <= 0 {
		return fmt.Errorf("int_latency must be > 0")
	}
	if c.MulLatency <= 0 {
		return fmt.Errorf("mul_latency must be > 0")
	}
	if c.MemLatency <= 0 {
		return fmt.Errorf("mem_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
