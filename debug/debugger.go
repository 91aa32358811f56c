package debug

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/sarchlab/vm64/emu"
)

// StopReason tells why Continue returned.
type StopReason int

const (
	// StopHalted means the program executed HALT.
	StopHalted StopReason = iota
	// StopBreakpoint means the PC reached a breakpoint.
	StopBreakpoint
	// StopCondition means a watched condition became true.
	StopCondition
	// StopLimit means the instruction limit was reached.
	StopLimit
)

func (r StopReason) String() string {
	switch r {
	case StopHalted:
		return "halted"
	case StopBreakpoint:
		return "breakpoint"
	case StopCondition:
		return "condition"
	case StopLimit:
		return "limit"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Debugger steps a CPU and stops at breakpoints and watched conditions.
type Debugger struct {
	cpu         *emu.CPU
	tick        func() error
	log         logr.Logger
	breakpoints map[uint64]struct{}
	watches     []*Condition
	hit         *Condition
}

// Option configures a Debugger.
type Option func(*Debugger)

// WithTick replaces the function that executes one instruction. The timing
// core uses it so that stepping is also charged cycles.
func WithTick(tick func() error) Option {
	return func(d *Debugger) {
		d.tick = tick
	}
}

// WithLogger sets the logger that records stops.
func WithLogger(log logr.Logger) Option {
	return func(d *Debugger) {
		d.log = log
	}
}

// New creates a debugger for cpu.
func New(cpu *emu.CPU, opts ...Option) *Debugger {
	d := &Debugger{
		cpu:         cpu,
		tick:        cpu.Tick,
		log:         logr.Discard(),
		breakpoints: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CPU returns the debugged CPU.
func (d *Debugger) CPU() *emu.CPU {
	return d.cpu
}

// AddBreakpoint stops execution before the instruction at pc runs.
func (d *Debugger) AddBreakpoint(pc uint64) {
	d.breakpoints[pc] = struct{}{}
}

// RemoveBreakpoint deletes the breakpoint at pc, if any.
func (d *Debugger) RemoveBreakpoint(pc uint64) {
	delete(d.breakpoints, pc)
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (d *Debugger) Breakpoints() []uint64 {
	pcs := make([]uint64, 0, len(d.breakpoints))
	for pc := range d.breakpoints {
		pcs = append(pcs, pc)
	}
	slices.Sort(pcs)
	return pcs
}

// Watch stops execution after any instruction that makes cond true.
func (d *Debugger) Watch(cond *Condition) {
	d.watches = append(d.watches, cond)
}

// ClearWatches removes every watched condition.
func (d *Debugger) ClearWatches() {
	d.watches = nil
}

// Triggered returns the condition that caused the last StopCondition.
func (d *Debugger) Triggered() *Condition {
	return d.hit
}

// Step executes one instruction.
func (d *Debugger) Step() error {
	return d.tick()
}

// Continue runs until the program halts, a breakpoint is reached, a watched
// condition becomes true or limit instructions have run. A zero limit means
// no limit. The instruction at the current PC always runs, so Continue can
// resume from a breakpoint.
func (d *Debugger) Continue(limit uint64) (StopReason, error) {
	d.hit = nil

	for n := uint64(0); ; n++ {
		if !d.cpu.Running() {
			return d.stop(StopHalted), nil
		}
		if limit > 0 && n >= limit {
			return d.stop(StopLimit), nil
		}

		if err := d.tick(); err != nil {
			return StopHalted, err
		}

		if !d.cpu.Running() {
			return d.stop(StopHalted), nil
		}
		if _, ok := d.breakpoints[d.cpu.PC()]; ok {
			return d.stop(StopBreakpoint), nil
		}
		for _, w := range d.watches {
			ok, err := w.Eval(d.cpu)
			if err != nil {
				return StopCondition, err
			}
			if ok {
				d.hit = w
				return d.stop(StopCondition), nil
			}
		}
	}
}

func (d *Debugger) stop(reason StopReason) StopReason {
	d.log.V(1).Info("debugger stopped", "reason", reason.String(),
		"pc", fmt.Sprintf("0x%X", d.cpu.PC()), "cycles", d.cpu.Cycles())
	return reason
}
