package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for each instruction class of vm64,
// plus the data cache parameters used by the timing core.
type TimingConfig struct {
	// ControlLatency covers HALT and NOP. Default: 1 cycle.
	ControlLatency uint64 `json:"control_latency"`

	// ALULatency is the latency of integer add, subtract, increment and
	// decrement. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// MultiplyLatency is the latency of integer multiply. Default: 3 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DivideLatency is the latency of integer divide and modulo.
	// Default: 12 cycles.
	DivideLatency uint64 `json:"divide_latency"`

	// LogicLatency covers NOT, AND, OR, XOR and the shifts. Default: 1 cycle.
	LogicLatency uint64 `json:"logic_latency"`

	// MoveLatency covers register moves and immediate loads. Default: 1 cycle.
	MoveLatency uint64 `json:"move_latency"`

	// LoadLatency is the latency of a load that hits the data cache.
	// Default: 3 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of a store that hits the data cache.
	// Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// CompareLatency is the latency of CMP and its sized forms. Default: 1 cycle.
	CompareLatency uint64 `json:"compare_latency"`

	// FlagLatency is the latency of the flag set/clear instructions.
	// Default: 1 cycle.
	FlagLatency uint64 `json:"flag_latency"`

	// BranchLatency is the base latency of a jump. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchTakenPenalty is added when a jump redirects the PC.
	// Default: 2 cycles.
	BranchTakenPenalty uint64 `json:"branch_taken_penalty"`

	// CallLatency covers CALL and RET. Default: 3 cycles.
	CallLatency uint64 `json:"call_latency"`

	// StackLatency covers PUSH and POP. Default: 2 cycles.
	StackLatency uint64 `json:"stack_latency"`

	// IOLatency covers the I/O instructions. Default: 20 cycles.
	IOLatency uint64 `json:"io_latency"`

	// FPULatency covers floating-point add, subtract and multiply.
	// Default: 4 cycles.
	FPULatency uint64 `json:"fpu_latency"`

	// FPUDivideLatency covers floating-point divide and square root.
	// Default: 14 cycles.
	FPUDivideLatency uint64 `json:"fpu_divide_latency"`

	// FPUComplexLatency covers sine and cosine. Default: 40 cycles.
	FPUComplexLatency uint64 `json:"fpu_complex_latency"`

	// ConvertLatency covers integer/float conversions. Default: 3 cycles.
	ConvertLatency uint64 `json:"convert_latency"`

	// DCacheSize is the data cache capacity in bytes. Default: 4096.
	DCacheSize int `json:"dcache_size"`

	// DCacheAssociativity is the number of ways. Default: 4.
	DCacheAssociativity int `json:"dcache_associativity"`

	// DCacheBlockSize is the cache line size in bytes. Default: 64.
	DCacheBlockSize int `json:"dcache_block_size"`

	// DCacheMissLatency is the latency of a data access that misses.
	// Default: 40 cycles.
	DCacheMissLatency uint64 `json:"dcache_miss_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ControlLatency:      1,
		ALULatency:          1,
		MultiplyLatency:     3,
		DivideLatency:       12,
		LogicLatency:        1,
		MoveLatency:         1,
		LoadLatency:         3,
		StoreLatency:        1,
		CompareLatency:      1,
		FlagLatency:         1,
		BranchLatency:       1,
		BranchTakenPenalty:  2,
		CallLatency:         3,
		StackLatency:        2,
		IOLatency:           20,
		FPULatency:          4,
		FPUDivideLatency:    14,
		FPUComplexLatency:   40,
		ConvertLatency:      3,
		DCacheSize:          4096,
		DCacheAssociativity: 4,
		DCacheBlockSize:     64,
		DCacheMissLatency:   40,
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

// Validate checks that every instruction latency is positive and that the
// cache geometry is consistent.
func (c *TimingConfig) Validate() error {
	for name, v := range map[string]uint64{
		"control_latency":     c.ControlLatency,
		"alu_latency":         c.ALULatency,
		"multiply_latency":    c.MultiplyLatency,
		"divide_latency":      c.DivideLatency,
		"logic_latency":       c.LogicLatency,
		"move_latency":        c.MoveLatency,
		"load_latency":        c.LoadLatency,
		"store_latency":       c.StoreLatency,
		"compare_latency":     c.CompareLatency,
		"flag_latency":        c.FlagLatency,
		"branch_latency":      c.BranchLatency,
		"call_latency":        c.CallLatency,
		"stack_latency":       c.StackLatency,
		"io_latency":          c.IOLatency,
		"fpu_latency":         c.FPULatency,
		"fpu_divide_latency":  c.FPUDivideLatency,
		"fpu_complex_latency": c.FPUComplexLatency,
		"convert_latency":     c.ConvertLatency,
	} {
		if v == 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}

	if c.DCacheBlockSize <= 0 || c.DCacheBlockSize&(c.DCacheBlockSize-1) != 0 {
		return fmt.Errorf("dcache_block_size must be a positive power of two")
	}
	if c.DCacheAssociativity <= 0 {
		return fmt.Errorf("dcache_associativity must be > 0")
	}
	if c.DCacheSize <= 0 || c.DCacheSize%(c.DCacheAssociativity*c.DCacheBlockSize) != 0 {
		return fmt.Errorf("dcache_size must be a positive multiple of associativity * block size")
	}
	if c.DCacheMissLatency < c.LoadLatency {
		return fmt.Errorf("dcache_miss_latency must be >= load_latency")
	}
	return nil
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
