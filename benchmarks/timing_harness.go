// Package benchmarks provides sample vm64 programs and a harness that runs
// them through the timing core.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
	"github.com/sarchlab/vm64/internal/report"
	"github.com/sarchlab/vm64/timing/core"
	"github.com/sarchlab/vm64/timing/latency"
)

// ProgramAddr is where every benchmark program is loaded.
const ProgramAddr uint64 = 0x1000

// MemorySize is the memory size of a benchmark run.
const MemorySize uint64 = 0x20000

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing core
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// MemStalls is cycles lost to data cache misses
	MemStalls uint64 `json:"mem_stalls"`

	// BranchPenalties is cycles lost to taken jumps
	BranchPenalties uint64 `json:"branch_penalties"`

	// DCacheHits/Misses count data cache line accesses
	DCacheHits   uint64 `json:"dcache_hits"`
	DCacheMisses uint64 `json:"dcache_misses"`

	// Result is R0 when the program halted
	Result uint64 `json:"result"`

	// Passed is true when Result matches the expected value
	Passed bool `json:"passed"`

	// Error describes a failed run
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the CPU and memory before the run (optional)
	Setup func(cpu *emu.CPU, mem *emu.Memory) error

	// Program is assembled at ProgramAddr
	Program *insts.Builder

	// ExpectedResult is the value R0 must hold at HALT
	ExpectedResult uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Timing is the timing configuration (default: latency.DefaultTimingConfig)
	Timing *latency.TimingConfig

	// MaxInstructions bounds each run (default: 10 million)
	MaxInstructions uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Printer formats numbers in human-readable output (default: system locale)
	Printer *report.Printer

	// Verbose enables per-class instruction counts
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Timing:          latency.DefaultTimingConfig(),
		MaxInstructions: 10_000_000,
		Output:          os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
	byClass    map[string]map[insts.Class]uint64
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Timing == nil {
		config.Timing = latency.DefaultTimingConfig()
	}
	if config.MaxInstructions == 0 {
		config.MaxInstructions = DefaultConfig().MaxInstructions
	}
	if config.Printer == nil {
		config.Printer = report.New()
	}
	return &Harness{
		config:  config,
		byClass: make(map[string]map[insts.Class]uint64),
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results. A benchmark that
// fails to run is reported through its Error field.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}
	fail := func(err error) BenchmarkResult {
		result.Error = err.Error()
		return result
	}

	memory := emu.NewMemory(MemorySize)
	program, err := bench.Program.Bytes(ProgramAddr)
	if err != nil {
		return fail(err)
	}
	if err := memory.Load(ProgramAddr, program); err != nil {
		return fail(err)
	}

	c, err := core.NewCore(memory, nil, h.config.Timing,
		emu.WithEntryPoint(ProgramAddr))
	if err != nil {
		return fail(err)
	}

	if bench.Setup != nil {
		if err := bench.Setup(c.CPU(), memory); err != nil {
			return fail(fmt.Errorf("setup: %w", err))
		}
	}

	start := time.Now()
	err = c.Run(h.config.MaxInstructions)
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.MemStalls = stats.MemStalls
	result.BranchPenalties = stats.BranchPenalties
	result.DCacheHits = stats.DCacheHits
	result.DCacheMisses = stats.DCacheMisses
	result.Result = c.CPU().RegFile().ReadReg(0)
	result.Passed = err == nil && result.Result == bench.ExpectedResult
	h.byClass[bench.Name] = stats.ByClass

	if err != nil {
		return fail(err)
	}
	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output
	p := h.config.Printer

	_, _ = fmt.Fprintln(out, "=== vm64 Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		_, _ = fmt.Fprintf(out, "Benchmark: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		if r.Error != "" {
			_, _ = fmt.Fprintf(out, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintf(out, "  Result (R0): %d\n", r.Result)
		_, _ = fmt.Fprintln(out, "  --- Timing ---")
		_ = p.WriteTable(out, 2, []report.Field{
			{Label: "Simulated Cycles", Value: p.Count(r.SimulatedCycles)},
			{Label: "Instructions Retired", Value: p.Count(r.InstructionsRetired)},
			{Label: "CPI", Value: p.Ratio(r.CPI, 3)},
			{Label: "Mem Stalls", Value: p.Count(r.MemStalls)},
			{Label: "Branch Penalties", Value: p.Count(r.BranchPenalties)},
		})

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(out, "  --- D-Cache ---")
			_ = p.WriteTable(out, 2, []report.Field{
				{Label: "Hits", Value: p.Count(r.DCacheHits)},
				{Label: "Misses", Value: p.Count(r.DCacheMisses)},
				{Label: "Hit Rate", Value: p.Percent(r.DCacheHits, r.DCacheHits+r.DCacheMisses)},
			})
		}

		if h.config.Verbose {
			h.printClasses(r.Name)
		}

		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

func (h *Harness) printClasses(name string) {
	counts := h.byClass[name]
	if len(counts) == 0 {
		return
	}

	p := h.config.Printer
	var fields []report.Field
	for _, class := range insts.Classes() {
		if n := counts[class]; n > 0 {
			fields = append(fields, report.Field{Label: class.String(), Value: p.Count(n)})
		}
	}

	_, _ = fmt.Fprintln(h.config.Output, "  --- Instruction Mix ---")
	_ = p.WriteTable(h.config.Output, 2, fields)
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,mem_stalls,branch_penalties,dcache_hits,dcache_misses,result,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.MemStalls,
			r.BranchPenalties,
			r.DCacheHits,
			r.DCacheMisses,
			r.Result,
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Timing is the timing configuration used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Passed is the number of benchmarks whose result matched
	Passed int `json:"passed"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		s.TotalCycles += r.SimulatedCycles
		s.TotalInstructions += r.InstructionsRetired
		s.TotalWallTime += r.WallTime
		if r.Passed {
			s.Passed++
		}
	}
	if s.TotalInstructions > 0 {
		s.AverageCPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}
	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	rpt := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Timing:    h.config.Timing,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rpt)
}
