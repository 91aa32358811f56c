// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

func fpuRR(fn func(f *FPU, a, b uint64, size Size) uint64, size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		a := c.regFile.Read(inst.Rd, size)
		b := c.regFile.Read(inst.Rs, size)
		c.regFile.Write(inst.Rd, fn(c.fpu, a, b, size), size)
		return nil
	}
}

func fpuR(fn func(f *FPU, a uint64, size Size) uint64, size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.regFile.Write(inst.Rd, fn(c.fpu, c.regFile.Read(inst.Rd, size), size), size)
		return nil
	}
}

// convert computes Rd = fn(Rs).
func convert(fn func(f *FPU, a uint64, size Size) uint64, size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.regFile.Write(inst.Rd, fn(c.fpu, c.regFile.Read(inst.Rs, size), size), size)
		return nil
	}
}

func fpuHandlers() map[insts.Op]execFunc {
	return map[insts.Op]execFunc{
		insts.OpFADD4: fpuRR((*FPU).Add, Size4),
		insts.OpFSUB4: fpuRR((*FPU).Sub, Size4),
		insts.OpFMUL4: fpuRR((*FPU).Mul, Size4),
		insts.OpFDIV4: fpuRR((*FPU).Div, Size4),
		insts.OpFADD8: fpuRR((*FPU).Add, Size8),
		insts.OpFSUB8: fpuRR((*FPU).Sub, Size8),
		insts.OpFMUL8: fpuRR((*FPU).Mul, Size8),
		insts.OpFDIV8: fpuRR((*FPU).Div, Size8),

		insts.OpFSQRT4: fpuR((*FPU).Sqrt, Size4),
		insts.OpFSQRT8: fpuR((*FPU).Sqrt, Size8),
		insts.OpFSIN4:  fpuR((*FPU).Sin, Size4),
		insts.OpFCOS4:  fpuR((*FPU).Cos, Size4),
		insts.OpFSIN8:  fpuR((*FPU).Sin, Size8),
		insts.OpFCOS8:  fpuR((*FPU).Cos, Size8),

		// INTFLOAT converts in place.
		insts.OpINTFLOAT4: fpuR((*FPU).IntToFloat, Size4),
		insts.OpINTFLOAT8: fpuR((*FPU).IntToFloat, Size8),

		insts.OpCVTF2I8: convert((*FPU).FloatToInt, Size8),
		insts.OpCVTI2F8: convert((*FPU).IntToFloat, Size8),
		insts.OpCVTF2I4: convert((*FPU).FloatToInt, Size4),
		insts.OpCVTI2F4: convert((*FPU).IntToFloat, Size4),
	}
}
