// Package emu provides functional vm64 emulation.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/sarchlab/vm64/insts"
)

// DefaultMaxCycles is the cycle ceiling used by Run when none is given.
const DefaultMaxCycles uint64 = 10_000_000_000

// DefaultStackPointer is the conventional initial SP.
const DefaultStackPointer uint64 = 0x1C000

// CPU executes vm64 instructions functionally.
//
// The CPU owns its register file and borrows the memory bus and I/O system
// it is constructed with. It is not safe for concurrent use: only one
// goroutine may drive Tick or Run at a time. Stop may be called from any
// goroutine to end a Run between instructions.
type CPU struct {
	regFile *RegFile
	bus     Bus
	io      *IOSystem
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	fpu        *FPU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit
	stack      *StackUnit

	log    logr.Logger
	tracer io.Writer

	// Execution state
	running   atomic.Bool
	ir        uint64
	instPC    uint64
	lastInst  *insts.Instruction
	cycles    uint64
	maxCycles uint64

	stackBase  uint64
	stackLimit uint64
}

// CPUOption is a functional option for configuring the CPU.
type CPUOption func(*CPU)

// WithLogger sets the logger that receives non-fatal warnings.
func WithLogger(log logr.Logger) CPUOption {
	return func(c *CPU) {
		c.log = log
	}
}

// WithTracer writes one disassembled line per executed instruction to w.
func WithTracer(w io.Writer) CPUOption {
	return func(c *CPU) {
		c.tracer = w
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint64) CPUOption {
	return func(c *CPU) {
		c.regFile.SetSP(sp)
	}
}

// WithEntryPoint sets the initial program counter.
func WithEntryPoint(pc uint64) CPUOption {
	return func(c *CPU) {
		c.regFile.PC = pc
	}
}

// WithStackBounds restricts the stack to [base, limit). A zero limit means
// the end of memory.
func WithStackBounds(base, limit uint64) CPUOption {
	return func(c *CPU) {
		c.stackBase = base
		c.stackLimit = limit
	}
}

// WithMaxCycles sets the ceiling used by Run(0).
func WithMaxCycles(n uint64) CPUOption {
	return func(c *CPU) {
		c.maxCycles = n
	}
}

// NewCPU creates a CPU attached to the given memory bus and I/O system. A
// nil I/O system is replaced by an empty one. The CPU starts in the running
// state with PC 0 and SP DefaultStackPointer unless options say otherwise.
func NewCPU(bus Bus, ioSys *IOSystem, opts ...CPUOption) *CPU {
	regFile := &RegFile{}
	regFile.SetSP(DefaultStackPointer)

	if ioSys == nil {
		ioSys = NewIOSystem()
	}

	c := &CPU{
		regFile:   regFile,
		bus:       bus,
		io:        ioSys,
		decoder:   insts.NewDecoder(),
		log:       logr.Discard(),
		maxCycles: DefaultMaxCycles,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.alu = NewALU(regFile)
	c.fpu = NewFPU(regFile, c.log)
	c.lsu = NewLoadStoreUnit(regFile, bus)
	c.branchUnit = NewBranchUnit(regFile)
	c.stack = NewStackUnit(regFile, bus)
	c.stack.SetBounds(c.stackBase, c.stackLimit)

	c.running.Store(true)

	return c
}

// RegFile returns the CPU's register file.
func (c *CPU) RegFile() *RegFile {
	return c.regFile
}

// Bus returns the memory bus the CPU executes from.
func (c *CPU) Bus() Bus {
	return c.bus
}

// IO returns the CPU's I/O system.
func (c *CPU) IO() *IOSystem {
	return c.io
}

// PC returns the program counter.
func (c *CPU) PC() uint64 {
	return c.regFile.PC
}

// SetPC sets the program counter.
func (c *CPU) SetPC(pc uint64) {
	c.regFile.PC = pc
}

// SP returns the stack pointer.
func (c *CPU) SP() uint64 {
	return c.regFile.SP()
}

// SetSP sets the stack pointer.
func (c *CPU) SetSP(sp uint64) {
	c.regFile.SetSP(sp)
}

// Flags returns a copy of the condition flags.
func (c *CPU) Flags() Flags {
	return c.regFile.Flags
}

// Running reports whether the CPU has not halted.
func (c *CPU) Running() bool {
	return c.running.Load()
}

// Stop clears the running state. A Run in progress returns after the
// current instruction.
func (c *CPU) Stop() {
	c.running.Store(false)
}

// Resume sets the running state so Tick and Run continue from PC.
func (c *CPU) Resume() {
	c.running.Store(true)
}

// Cycles returns the number of instructions executed.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// MaxCycles returns the ceiling used by Run(0).
func (c *CPU) MaxCycles() uint64 {
	return c.maxCycles
}

// LastInstruction returns the most recently executed instruction, or nil.
func (c *CPU) LastInstruction() *insts.Instruction {
	return c.lastInst
}

// Reset clears registers, flags and the cycle count, sets PC and SP, and
// puts the CPU back in the running state. Memory and devices are left
// untouched.
func (c *CPU) Reset(pc, sp uint64) {
	c.regFile.Reset()
	c.regFile.PC = pc
	c.regFile.SetSP(sp)
	c.cycles = 0
	c.lastInst = nil
	c.running.Store(true)
}

// Fetch reads the 64-bit word at PC and advances PC past it.
func (c *CPU) Fetch() (uint64, error) {
	buf, err := c.bus.Bytes(c.regFile.PC, 8)
	if err != nil {
		return 0, err
	}
	c.ir = binary.LittleEndian.Uint64(buf)
	c.regFile.PC += 8
	return c.ir, nil
}

// Decode decodes an instruction word. For RI instructions it fetches the
// immediate word, advancing PC again.
func (c *CPU) Decode(word uint64) (*insts.Instruction, error) {
	inst, err := c.decoder.Decode(word)
	if err != nil {
		return nil, err
	}

	if inst.Format == insts.FormatRI {
		imm, err := c.Fetch()
		if err != nil {
			return nil, err
		}
		inst.Imm = imm
	}

	return inst, nil
}

// Execute executes a decoded instruction. PC must already point past it.
func (c *CPU) Execute(inst *insts.Instruction) error {
	handler, ok := execTable[inst.Op]
	if !ok {
		return fmt.Errorf("%w 0x%04X", insts.ErrUnknownOpcode, uint16(inst.Op))
	}
	return handler(c, inst)
}

// Tick fetches, decodes and executes one instruction. Fatal conditions are
// returned as *ExecError; the CPU state is left as it was at the failure.
func (c *CPU) Tick() error {
	if !c.running.Load() {
		return &ExecError{PC: c.regFile.PC, Err: ErrHalted}
	}

	c.instPC = c.regFile.PC

	word, err := c.Fetch()
	if err != nil {
		return c.fail(nil, err)
	}

	inst, err := c.Decode(word)
	if err != nil {
		return c.fail(nil, err)
	}

	if err := c.Execute(inst); err != nil {
		return c.fail(inst, err)
	}

	c.lastInst = inst
	c.cycles++
	c.trace(inst)

	return nil
}

// Run executes instructions until the CPU halts. maxCycles bounds the
// number of instructions; 0 selects the configured ceiling. A program
// still running after maxCycles instructions fails with ErrCycleLimit.
func (c *CPU) Run(maxCycles uint64) error {
	if maxCycles == 0 {
		maxCycles = c.maxCycles
	}

	for n := uint64(0); c.running.Load(); n++ {
		if n >= maxCycles {
			return &ExecError{
				PC:  c.regFile.PC,
				Err: fmt.Errorf("%w after %d cycles", ErrCycleLimit, maxCycles),
			}
		}
		if err := c.Tick(); err != nil {
			return err
		}
	}

	return nil
}

func (c *CPU) fail(inst *insts.Instruction, err error) error {
	e := &ExecError{PC: c.instPC, Err: err}

	if inst != nil {
		e.Op = inst.Op
		e.Decoded = true
	} else if errors.Is(err, insts.ErrUnknownOpcode) {
		e.Op = insts.OpcodeOf(c.ir)
		e.Decoded = true
	}

	var addrErr *AddressError
	switch {
	case errors.As(err, &addrErr):
		e.Addr = addrErr.Addr
		e.HasAddr = true
	case errors.Is(err, ErrStackOverflow), errors.Is(err, ErrStackUnderflow):
		e.Addr = c.regFile.SP()
		e.HasAddr = true
	}

	return e
}

func (c *CPU) trace(inst *insts.Instruction) {
	if c.tracer == nil {
		return
	}
	text := inst.String()
	if sym, ok := c.symbolFor(inst); ok {
		text += " <" + sym + ">"
	}
	_, _ = fmt.Fprintf(c.tracer, "%08X  %-24s %s\n", c.instPC, text, c.regFile.Flags)
}

type symbolizer interface {
	SymbolAt(addr uint64) (Symbol, bool)
}

// symbolFor names the address operand of an absolute load, store, jump or
// call when the bus carries a symbol covering it.
func (c *CPU) symbolFor(inst *insts.Instruction) (string, bool) {
	if inst.Format != insts.FormatRI {
		return "", false
	}
	switch inst.Class() {
	case insts.ClassLoad, insts.ClassStore, insts.ClassBranch, insts.ClassCall:
	default:
		return "", false
	}

	syms, ok := c.bus.(symbolizer)
	if !ok {
		return "", false
	}
	s, ok := syms.SymbolAt(inst.Imm)
	if !ok {
		return "", false
	}
	if off := inst.Imm - s.Addr; off != 0 {
		return fmt.Sprintf("%s+0x%X", s.Name, off), true
	}
	return s.Name, true
}

// State is a point-in-time copy of the architectural state, safe to hand
// to another goroutine.
type State struct {
	Registers [NumRegs]uint64
	PC        uint64
	SP        uint64
	Flags     Flags
	Running   bool
	Cycles    uint64
}

// State returns a snapshot of the architectural state.
func (c *CPU) State() State {
	return State{
		Registers: c.regFile.R,
		PC:        c.regFile.PC,
		SP:        c.regFile.SP(),
		Flags:     c.regFile.Flags,
		Running:   c.running.Load(),
		Cycles:    c.cycles,
	}
}

// String formats the state as a multi-line register dump.
func (s State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PC: 0x%016X  SP: 0x%016X  %s  running=%t cycles=%d\n",
		s.PC, s.SP, s.Flags, s.Running, s.Cycles)
	for i, v := range s.Registers {
		fmt.Fprintf(&b, "R%02d: 0x%016X (%d)\n", i, v, int64(v))
	}
	return b.String()
}
