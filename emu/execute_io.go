// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

func ioHandlers() map[insts.Op]execFunc {
	reset := func(c *CPU, _ *insts.Instruction) error {
		c.io.Reset()
		return nil
	}

	return map[insts.Op]execFunc{
		insts.OpSVIO: func(c *CPU, inst *insts.Instruction) error {
			c.io.Write(inst.Imm, c.regFile.ReadReg(inst.Rd))
			return nil
		},
		insts.OpLOADIO: func(c *CPU, inst *insts.Instruction) error {
			value := c.io.Read(inst.Imm)
			c.regFile.WriteReg(inst.Rd, value)
			c.regFile.Flags.SetZN(value, Size8)
			return nil
		},
		insts.OpSHOWIO: func(c *CPU, inst *insts.Instruction) error {
			c.io.Show(inst.Imm)
			return nil
		},
		insts.OpCLRIO:   reset,
		insts.OpRESETIO: reset,
	}
}
