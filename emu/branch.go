// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

// Cond represents a jump condition.
type Cond uint8

// Jump conditions, in opcode order.
const (
	CondAL Cond = iota // Always
	CondEQ             // Equal (Z == 1)
	CondNE             // Not equal (Z == 0)
	CondMI             // Minus (N == 1)
	CondPL             // Plus (N == 0)
	CondCS             // Carry set (C == 1)
	CondCC             // Carry clear (C == 0)
	CondLT             // Signed less than (V != N)
	CondGE             // Signed greater than or equal (V == N)
)

var jumpConds = map[insts.Op]Cond{
	insts.OpJMP: CondAL,
	insts.OpJEQ: CondEQ,
	insts.OpJNE: CondNE,
	insts.OpJMI: CondMI,
	insts.OpJPL: CondPL,
	insts.OpJCS: CondCS,
	insts.OpJCC: CondCC,
	insts.OpJLT: CondLT,
	insts.OpJGE: CondGE,
}

// CondFor returns the condition tested by a jump opcode.
func CondFor(op insts.Op) (Cond, bool) {
	c, ok := jumpConds[op]
	return c, ok
}

// BranchUnit implements vm64 jumps.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Jump sets PC to the absolute target if the condition holds. It reports
// whether the jump was taken; when it is not, PC is left unchanged.
func (b *BranchUnit) Jump(target uint64, cond Cond) bool {
	if !b.CheckCondition(cond) {
		return false
	}
	b.regFile.PC = target
	return true
}

// CheckCondition evaluates a condition against the current flags.
func (b *BranchUnit) CheckCondition(cond Cond) bool {
	f := b.regFile.Flags

	switch cond {
	case CondAL:
		return true
	case CondEQ:
		return f.Z
	case CondNE:
		return !f.Z
	case CondMI:
		return f.N
	case CondPL:
		return !f.N
	case CondCS:
		return f.C
	case CondCC:
		return !f.C
	case CondLT:
		return f.V != f.N
	case CondGE:
		return f.V == f.N
	default:
		return false
	}
}
