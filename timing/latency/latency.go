// Package latency provides the instruction timing model of vm64.
//
// Every opcode belongs to an instruction class (see insts.Class); the table
// maps classes to cycle counts taken from a TimingConfig.
package latency

import (
	"github.com/sarchlab/vm64/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// ClassLatency returns the latency in cycles of an instruction class.
func (t *Table) ClassLatency(class insts.Class) uint64 {
	c := t.config
	switch class {
	case insts.ClassControl:
		return c.ControlLatency
	case insts.ClassALU:
		return c.ALULatency
	case insts.ClassMultiply:
		return c.MultiplyLatency
	case insts.ClassDivide:
		return c.DivideLatency
	case insts.ClassLogic:
		return c.LogicLatency
	case insts.ClassMove:
		return c.MoveLatency
	case insts.ClassLoad:
		return c.LoadLatency
	case insts.ClassStore:
		return c.StoreLatency
	case insts.ClassCompare:
		return c.CompareLatency
	case insts.ClassFlag:
		return c.FlagLatency
	case insts.ClassBranch:
		return c.BranchLatency
	case insts.ClassCall:
		return c.CallLatency
	case insts.ClassStack:
		return c.StackLatency
	case insts.ClassIO:
		return c.IOLatency
	case insts.ClassFPU:
		return c.FPULatency
	case insts.ClassFPUDivide:
		return c.FPUDivideLatency
	case insts.ClassFPUComplex:
		return c.FPUComplexLatency
	case insts.ClassConvert:
		return c.ConvertLatency
	default:
		return 1
	}
}

// GetLatency returns the execution latency in cycles for the given
// instruction, assuming a data cache hit and a jump that is not taken.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}
	return t.ClassLatency(inst.Class())
}

// IsMemoryOp returns true if the instruction reads or writes data memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Class() {
	case insts.ClassLoad, insts.ClassStore, insts.ClassStack, insts.ClassCall:
		return true
	default:
		return false
	}
}

// IsLoadOp returns true if the instruction is a load.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	return inst != nil && inst.Class() == insts.ClassLoad
}

// IsStoreOp returns true if the instruction is a store.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	return inst != nil && inst.Class() == insts.ClassStore
}

// IsBranchOp returns true if the instruction may redirect the PC.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Class() {
	case insts.ClassBranch, insts.ClassCall:
		return true
	default:
		return false
	}
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
