// Package main provides a profiling wrapper for vm64 to find host-side
// performance bottlenecks in the emulator and the timing core.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/vm64/benchmarks"
	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/loader"
	"github.com/sarchlab/vm64/timing/core"
)

var (
	timing      = flag.Bool("timing", false, "Enable timing simulation mode")
	bench       = flag.String("bench", "", "Profile a built-in benchmark instead of an image")
	repeat      = flag.Int("repeat", 1, "Number of times to run the program")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 100_000_000, "max instructions per run (0 = CPU default)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 && *bench == "" {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <image>\n")
		fmt.Fprintf(os.Stderr, "       profile [options] -bench <name>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	newMachine, err := machineFactory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	// Set timeout
	go func() {
		time.Sleep(*duration)
		fmt.Printf("\nTimeout reached after %v - stopping execution\n", *duration)
		os.Exit(2)
	}()

	start := time.Now()

	var instrCount uint64
	for i := 0; i < *repeat; i++ {
		n, err := runOnce(newMachine)
		instrCount += n
		if err != nil {
			fmt.Fprintf(os.Stderr, "Run %d failed: %v\n", i, err)
			break
		}
	}

	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// machine holds a freshly loaded memory and the CPU options to run it with.
type machine struct {
	mem   *emu.Memory
	opts  []emu.CPUOption
	setup func(*emu.CPU, *emu.Memory) error
}

func (m *machine) prepare(cpu *emu.CPU) error {
	if m.setup == nil {
		return nil
	}
	return m.setup(cpu, m.mem)
}

// machineFactory returns a function producing a fresh machine per run, from
// either the named benchmark or the image on the command line.
func machineFactory() (func() (*machine, error), error) {
	if *bench != "" {
		for _, b := range benchmarks.GetMicrobenchmarks() {
			if b.Name != *bench {
				continue
			}
			image, err := b.Program.Bytes(benchmarks.ProgramAddr)
			if err != nil {
				return nil, err
			}
			return func() (*machine, error) {
				mem := emu.NewMemory(benchmarks.MemorySize)
				if err := mem.Load(benchmarks.ProgramAddr, image); err != nil {
					return nil, err
				}
				return &machine{
					mem:   mem,
					opts:  []emu.CPUOption{emu.WithEntryPoint(benchmarks.ProgramAddr)},
					setup: b.Setup,
				}, nil
			}, nil
		}
		return nil, fmt.Errorf("unknown benchmark %q", *bench)
	}

	programPath := flag.Arg(0)
	prog, err := loader.Load(programPath, loader.Options{})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)

	return func() (*machine, error) {
		mem := emu.NewMemory(0x20000)
		if err := prog.LoadInto(mem); err != nil {
			return nil, err
		}
		return &machine{
			mem: mem,
			opts: []emu.CPUOption{
				emu.WithEntryPoint(prog.EntryPoint),
				emu.WithStackPointer(prog.InitialSP),
			},
		}, nil
	}, nil
}

// runOnce runs one machine to completion and returns the instruction count.
func runOnce(newMachine func() (*machine, error)) (uint64, error) {
	m, err := newMachine()
	if err != nil {
		return 0, err
	}

	// Device output is discarded so that it does not dominate the profile.
	ioSys := emu.NewIOSystem()
	ioSys.Register(emu.ScreenAddr, emu.NewScreen(io.Discard))
	ioSys.Register(emu.KeyboardAddr, emu.NewKeyboard())

	if *timing {
		c, err := core.NewCore(m.mem, ioSys, nil, m.opts...)
		if err != nil {
			return 0, err
		}
		if err := m.prepare(c.CPU()); err != nil {
			return 0, err
		}
		err = c.Run(*instruction)
		return c.Stats().Instructions, err
	}

	cpu := emu.NewCPU(m.mem, ioSys, m.opts...)
	if err := m.prepare(cpu); err != nil {
		return 0, err
	}
	err = cpu.Run(*instruction)
	return cpu.Cycles(), err
}
