// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

type aluFunc func(a *ALU, x, y uint64, size Size, signed bool) uint64

var (
	aluAdd aluFunc = (*ALU).Add
	aluSub aluFunc = (*ALU).Sub
	aluMul aluFunc = (*ALU).Mul
	aluDiv aluFunc = (*ALU).Div
	aluMod aluFunc = (*ALU).Mod
)

// aluRR computes Rd = Rd op Rs at the given width.
func aluRR(fn aluFunc, size Size, signed bool) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		x := c.regFile.Read(inst.Rd, size)
		y := c.regFile.Read(inst.Rs, size)
		c.regFile.Write(inst.Rd, fn(c.alu, x, y, size, signed), size)
		return nil
	}
}

// aluRI computes Rd = Rd op imm at the given width. The immediate is
// truncated to the width.
func aluRI(fn aluFunc, size Size, signed bool) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		x := c.regFile.Read(inst.Rd, size)
		c.regFile.Write(inst.Rd, fn(c.alu, x, inst.Imm&size.Mask(), size, signed), size)
		return nil
	}
}

// aluStep computes Rd = Rd op 1 on the full register.
func aluStep(fn aluFunc) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		x := c.regFile.Read(inst.Rd, Size8)
		c.regFile.Write(inst.Rd, fn(c.alu, x, 1, Size8, true), Size8)
		return nil
	}
}

// cmpRR sets the flags of Rd - Rs at the given width without storing it.
func cmpRR(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.alu.Sub(c.regFile.Read(inst.Rd, size), c.regFile.Read(inst.Rs, size), size, true)
		return nil
	}
}

// cmpRI sets the flags of Rd - imm at the given width without storing it.
func cmpRI(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.alu.Sub(c.regFile.Read(inst.Rd, size), inst.Imm&size.Mask(), size, true)
		return nil
	}
}

func arithHandlers() map[insts.Op]execFunc {
	h := map[insts.Op]execFunc{
		insts.OpADD:  aluRR(aluAdd, Size8, true),
		insts.OpSUB:  aluRR(aluSub, Size8, true),
		insts.OpMULS: aluRR(aluMul, Size8, true),
		insts.OpMUL:  aluRR(aluMul, Size8, false),
		insts.OpDIV:  aluRR(aluDiv, Size8, true),
		insts.OpMOD:  aluRR(aluMod, Size8, true),
		insts.OpADDV: aluRI(aluAdd, Size8, true),
		insts.OpSUBV: aluRI(aluSub, Size8, true),
		insts.OpINC:  aluStep(aluAdd),
		insts.OpDEC:  aluStep(aluSub),
		insts.OpCMP:  cmpRR(Size8),
		insts.OpCMPV: cmpRI(Size8),
	}

	sized := []struct {
		size                          Size
		add, sub, mul, muls, div, mod insts.Op
		addv, subv, cmp, cmpv         insts.Op
	}{
		{Size1, insts.OpADD1, insts.OpSUB1, insts.OpMUL1, insts.OpMULS1, insts.OpDIV1, insts.OpMOD1,
			insts.OpADDV1, insts.OpSUBV1, insts.OpCMP1, insts.OpCMPV1},
		{Size2, insts.OpADD2, insts.OpSUB2, insts.OpMUL2, insts.OpMULS2, insts.OpDIV2, insts.OpMOD2,
			insts.OpADDV2, insts.OpSUBV2, insts.OpCMP2, insts.OpCMPV2},
		{Size4, insts.OpADD4, insts.OpSUB4, insts.OpMUL4, insts.OpMULS4, insts.OpDIV4, insts.OpMOD4,
			insts.OpADDV4, insts.OpSUBV4, insts.OpCMP4, insts.OpCMPV4},
		{Size8, insts.OpADD8, insts.OpSUB8, insts.OpMUL8, insts.OpMULS8, insts.OpDIV8, insts.OpMOD8,
			insts.OpADDV8, insts.OpSUBV8, insts.OpCMP8, insts.OpCMPV8},
	}
	for _, s := range sized {
		h[s.add] = aluRR(aluAdd, s.size, true)
		h[s.sub] = aluRR(aluSub, s.size, true)
		h[s.mul] = aluRR(aluMul, s.size, false)
		h[s.muls] = aluRR(aluMul, s.size, true)
		h[s.div] = aluRR(aluDiv, s.size, true)
		h[s.mod] = aluRR(aluMod, s.size, true)
		h[s.addv] = aluRI(aluAdd, s.size, true)
		h[s.subv] = aluRI(aluSub, s.size, true)
		h[s.cmp] = cmpRR(s.size)
		h[s.cmpv] = cmpRI(s.size)
	}

	return h
}
