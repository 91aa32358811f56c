package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/vm64/debug"
	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/internal/report"
	"github.com/sarchlab/vm64/loader"
	"github.com/sarchlab/vm64/timing/core"
	"github.com/sarchlab/vm64/timing/latency"
)

// machine is a CPU with its devices, optionally driven by the timing core.
type machine struct {
	mem    *emu.Memory
	cpu    *emu.CPU
	core   *core.Core
	screen *emu.Screen
	kbd    *emu.Keyboard
}

func (m *machine) tick() error {
	if m.core != nil {
		_, err := m.core.Tick()
		return err
	}
	return m.cpu.Tick()
}

func newLogger(w io.Writer, verbose bool) logr.Logger {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func run(opts *options, stdin *os.File, stdout, stderr io.Writer) error {
	log := newLogger(stderr, opts.verbose)

	prog, err := loader.Load(opts.image, loader.Options{
		Format:       opts.format,
		Base:         opts.base,
		StackPointer: opts.sp,
	})
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	if opts.verbose {
		fmt.Fprintf(stdout, "Loaded: %s\n", opts.image)
		fmt.Fprintf(stdout, "Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Fprintf(stdout, "Segments: %d\n", len(prog.Segments))
	}

	m, err := build(opts, prog, stdout, stderr, log)
	if err != nil {
		return err
	}

	if opts.kbdRaw {
		restore, err := startRawKeyboard(stdin, m.kbd, m.cpu.Stop, log)
		if err != nil {
			return err
		}
		defer restore()
	}

	runErr := execute(opts, m, stdout, log)
	m.screen.Flush()

	if opts.regs {
		fmt.Fprint(stdout, m.cpu.State())
	}
	if opts.timing || opts.verbose {
		if err := printStats(opts, m, stdout); err != nil {
			return err
		}
	}
	if opts.dumpPath != "" {
		if err := writeDump(opts.dumpPath, m.mem); err != nil {
			return err
		}
	}

	return runErr
}

func build(
	opts *options,
	prog *loader.Program,
	stdout, stderr io.Writer,
	log logr.Logger,
) (*machine, error) {
	m := &machine{mem: emu.NewMemory(opts.memSize)}
	if err := prog.LoadInto(m.mem); err != nil {
		return nil, err
	}

	ioSys := emu.NewIOSystem(emu.WithIOLogger(log.WithName("io")))
	m.screen = emu.NewScreen(stdout)
	m.kbd = emu.NewKeyboard()
	m.kbd.Type(opts.input)
	ioSys.Register(opts.screen, m.screen)
	ioSys.Register(opts.keyboard, m.kbd)
	for _, addr := range opts.latches {
		ioSys.Register(addr, emu.NewLatch(addr, stdout))
	}

	pc := prog.EntryPoint
	if opts.pcSet {
		pc = opts.pc
	}

	cpuOpts := []emu.CPUOption{
		emu.WithEntryPoint(pc),
		emu.WithStackPointer(prog.InitialSP),
		emu.WithMaxCycles(opts.maxCycles),
		emu.WithLogger(log.WithName("cpu")),
	}
	if opts.trace {
		cpuOpts = append(cpuOpts, emu.WithTracer(stderr))
	}

	if !opts.timing {
		m.cpu = emu.NewCPU(m.mem, ioSys, cpuOpts...)
		return m, nil
	}

	config := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		var err error
		config, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading timing config: %w", err)
		}
	}

	c, err := core.NewCore(m.mem, ioSys, config, cpuOpts...)
	if err != nil {
		return nil, err
	}
	m.core = c
	m.cpu = c.CPU()
	return m, nil
}

// execute runs the machine to completion, or under the debugger when a
// breakpoint or stop condition was requested.
func execute(opts *options, m *machine, stdout io.Writer, log logr.Logger) error {
	if len(opts.breakpoints) == 0 && opts.until == "" {
		if m.core != nil {
			return m.core.Run(opts.maxCycles)
		}
		return m.cpu.Run(opts.maxCycles)
	}

	d := debug.New(m.cpu,
		debug.WithTick(m.tick),
		debug.WithLogger(log.WithName("debug")),
	)
	for _, pc := range opts.breakpoints {
		d.AddBreakpoint(pc)
	}
	if opts.until != "" {
		cond, err := debug.Compile(opts.until)
		if err != nil {
			return err
		}
		d.Watch(cond)
	}

	reason, err := d.Continue(opts.maxCycles)
	if err != nil {
		return err
	}

	switch reason {
	case debug.StopBreakpoint:
		fmt.Fprintf(stdout, "Stopped at breakpoint 0x%X\n", m.cpu.PC())
	case debug.StopCondition:
		fmt.Fprintf(stdout, "Stopped at 0x%X: %s\n", m.cpu.PC(), d.Triggered())
	case debug.StopLimit:
		return &emu.ExecError{
			PC:  m.cpu.PC(),
			Err: fmt.Errorf("%w after %d instructions", emu.ErrCycleLimit, opts.maxCycles),
		}
	}
	return nil
}

func printStats(opts *options, m *machine, w io.Writer) error {
	var p *report.Printer
	if opts.lang != "" {
		p = report.New(opts.lang)
	} else {
		p = report.New()
	}

	fmt.Fprintf(w, "\nProgram: %s\n", opts.image)

	if m.core == nil {
		return p.WriteTable(w, 2, []report.Field{
			{Label: "Instructions", Value: p.Count(m.cpu.Cycles())},
		})
	}

	stats := m.core.Stats()
	fields := []report.Field{
		{Label: "Total Instructions", Value: p.Count(stats.Instructions)},
		{Label: "Total Cycles", Value: p.Count(stats.Cycles)},
		{Label: "CPI", Value: p.Ratio(stats.CPI(), 2)},
		{Label: "Memory stalls", Value: p.Count(stats.MemStalls)},
		{Label: "Branch penalties", Value: p.Count(stats.BranchPenalties)},
		{Label: "D-cache hits", Value: p.Count(stats.DCacheHits)},
		{Label: "D-cache misses", Value: p.Count(stats.DCacheMisses)},
		{Label: "D-cache hit rate", Value: p.Percent(stats.DCacheHits, stats.DCacheHits+stats.DCacheMisses)},
	}
	return p.WriteTable(w, 2, fields)
}

func writeDump(path string, mem *emu.Memory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dump: %w", err)
	}

	if err := mem.SaveText(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return f.Close()
}
