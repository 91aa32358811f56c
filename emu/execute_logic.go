// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

func logicRR(fn func(a *ALU, x, y uint64) uint64) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		r := fn(c.alu, c.regFile.ReadReg(inst.Rd), c.regFile.ReadReg(inst.Rs))
		c.regFile.WriteReg(inst.Rd, r)
		return nil
	}
}

func logicRI(fn func(a *ALU, x, y uint64) uint64) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.regFile.WriteReg(inst.Rd, fn(c.alu, c.regFile.ReadReg(inst.Rd), inst.Imm))
		return nil
	}
}

func logicR(fn func(a *ALU, x uint64) uint64) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.regFile.WriteReg(inst.Rd, fn(c.alu, c.regFile.ReadReg(inst.Rd)))
		return nil
	}
}

func logicHandlers() map[insts.Op]execFunc {
	return map[insts.Op]execFunc{
		insts.OpNOT:  logicR((*ALU).Not),
		insts.OpAND:  logicRR((*ALU).And),
		insts.OpANDV: logicRI((*ALU).And),
		insts.OpOR:   logicRR((*ALU).Or),
		insts.OpORV:  logicRI((*ALU).Or),
		insts.OpXOR:  logicRR((*ALU).Xor),
		insts.OpXORV: logicRI((*ALU).Xor),

		// Both left shifts are the same operation on the raw bits.
		insts.OpSHL:  logicR((*ALU).ShiftLeft),
		insts.OpSHLU: logicR((*ALU).ShiftLeft),
		insts.OpSAR:  logicR((*ALU).ShiftRightArith),
		insts.OpSHR:  logicR((*ALU).ShiftRightLogical),
	}
}
