// Package core provides the vm64 timing model.
//
// A Core drives an emu.CPU and charges every executed instruction a number
// of cycles: the latency of its instruction class, a penalty for taken
// jumps and stall cycles for data cache misses. Timing never changes the
// functional result of a program.
package core

import (
	"fmt"
	"maps"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
	"github.com/sarchlab/vm64/timing/cache"
	"github.com/sarchlab/vm64/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// MemStalls is the number of cycles lost to data cache misses.
	MemStalls uint64
	// BranchPenalties is the number of cycles lost to taken jumps.
	BranchPenalties uint64
	// DCacheHits and DCacheMisses count data cache line accesses.
	DCacheHits   uint64
	DCacheMisses uint64
	// ByClass counts retired instructions per instruction class.
	ByClass map[insts.Class]uint64
}

// CPI returns the average cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core is a timing model wrapped around a functional CPU.
type Core struct {
	cpu    *emu.CPU
	bus    *recordingBus
	table  *latency.Table
	dcache *cache.Cache
	stats  Stats
}

// NewCore creates a core whose CPU runs on the given bus and I/O system. A
// nil config selects latency.DefaultTimingConfig. The CPU options are
// passed through to emu.NewCPU.
func NewCore(
	bus emu.Bus,
	ioSys *emu.IOSystem,
	config *latency.TimingConfig,
	opts ...emu.CPUOption,
) (*Core, error) {
	if config == nil {
		config = latency.DefaultTimingConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	rb := &recordingBus{Bus: bus}
	dcache := cache.New(cache.Config{
		Size:          config.DCacheSize,
		Associativity: config.DCacheAssociativity,
		BlockSize:     config.DCacheBlockSize,
		HitLatency:    config.LoadLatency,
		MissLatency:   config.DCacheMissLatency,
	}, cache.NewBusBacking(bus))

	return &Core{
		cpu:    emu.NewCPU(rb, ioSys, opts...),
		bus:    rb,
		table:  latency.NewTableWithConfig(config),
		dcache: dcache,
		stats:  Stats{ByClass: make(map[insts.Class]uint64)},
	}, nil
}

// CPU returns the functional CPU driven by the core.
func (c *Core) CPU() *emu.CPU {
	return c.cpu
}

// DCache returns the data cache model.
func (c *Core) DCache() *cache.Cache {
	return c.dcache
}

// Table returns the latency table.
func (c *Core) Table() *latency.Table {
	return c.table
}

// Halted returns true once the CPU has executed HALT.
func (c *Core) Halted() bool {
	return !c.cpu.Running()
}

// Tick executes one instruction and returns the cycles it took.
func (c *Core) Tick() (uint64, error) {
	c.bus.reset()
	pc := c.cpu.PC()

	if err := c.cpu.Tick(); err != nil {
		return 0, err
	}

	inst := c.cpu.LastInstruction()
	cycles := c.table.GetLatency(inst)

	if inst.Class() == insts.ClassBranch && c.cpu.PC() != pc+8*uint64(inst.Words()) {
		penalty := c.table.Config().BranchTakenPenalty
		cycles += penalty
		c.stats.BranchPenalties += penalty
	}

	hit := c.dcache.Config().HitLatency
	for _, a := range c.bus.accesses {
		var r cache.AccessResult
		if a.Write {
			r = c.dcache.Write(a.Addr, int(a.Size), a.Value)
		} else {
			r = c.dcache.Read(a.Addr, int(a.Size))
		}
		if !r.Hit && r.Latency > hit {
			stall := r.Latency - hit
			cycles += stall
			c.stats.MemStalls += stall
		}
	}

	c.stats.Cycles += cycles
	c.stats.Instructions++
	c.stats.ByClass[inst.Class()]++

	return cycles, nil
}

// Run executes instructions until the CPU halts. maxInstructions bounds
// the run; zero selects the CPU's configured ceiling.
func (c *Core) Run(maxInstructions uint64) error {
	if maxInstructions == 0 {
		maxInstructions = c.cpu.MaxCycles()
	}

	for n := uint64(0); c.cpu.Running(); n++ {
		if n >= maxInstructions {
			return &emu.ExecError{
				PC:  c.cpu.PC(),
				Err: fmt.Errorf("%w after %d instructions", emu.ErrCycleLimit, maxInstructions),
			}
		}
		if _, err := c.Tick(); err != nil {
			return err
		}
	}

	return nil
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.stats
	s.ByClass = maps.Clone(c.stats.ByClass)
	cs := c.dcache.Stats()
	s.DCacheHits = cs.Hits
	s.DCacheMisses = cs.Misses
	return s
}

// ResetStats clears the statistics and empties the data cache.
func (c *Core) ResetStats() {
	c.stats = Stats{ByClass: make(map[insts.Class]uint64)}
	c.dcache.Reset()
}

// RunCycles executes instructions until at least the given number of
// cycles has elapsed. Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) (bool, error) {
	target := c.stats.Cycles + cycles
	for c.cpu.Running() && c.stats.Cycles < target {
		if _, err := c.Tick(); err != nil {
			return false, err
		}
	}
	return c.cpu.Running(), nil
}

// Reset restarts the CPU at pc with the given SP and clears the
// statistics and the data cache. Memory is left untouched.
func (c *Core) Reset(pc, sp uint64) {
	c.cpu.Reset(pc, sp)
	c.ResetStats()
}
