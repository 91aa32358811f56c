// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

func setFlag(set func(f *Flags)) execFunc {
	return func(c *CPU, _ *insts.Instruction) error {
		set(&c.regFile.Flags)
		return nil
	}
}

func jump(cond Cond) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.branchUnit.Jump(inst.Imm, cond)
		return nil
	}
}

func push(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		return c.stack.Push(c.regFile.Read(inst.Rd, size), size)
	}
}

func pop(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		value, err := c.stack.Pop(size)
		if err != nil {
			return err
		}
		c.regFile.Write(inst.Rd, value, size)
		c.regFile.Flags.SetZN(value, size)
		return nil
	}
}

func flowHandlers() map[insts.Op]execFunc {
	h := map[insts.Op]execFunc{
		insts.OpCLRZ: setFlag(func(f *Flags) { f.Z = false }),
		insts.OpSETZ: setFlag(func(f *Flags) { f.Z = true }),
		insts.OpCLRN: setFlag(func(f *Flags) { f.N = false }),
		insts.OpSETN: setFlag(func(f *Flags) { f.N = true }),
		insts.OpCLRC: setFlag(func(f *Flags) { f.C = false }),
		insts.OpSETC: setFlag(func(f *Flags) { f.C = true }),
		insts.OpCLRV: setFlag(func(f *Flags) { f.V = false }),
		insts.OpSETV: setFlag(func(f *Flags) { f.V = true }),

		insts.OpCALL: func(c *CPU, inst *insts.Instruction) error {
			return c.stack.Call(inst.Imm)
		},
		insts.OpRET: func(c *CPU, _ *insts.Instruction) error {
			return c.stack.Ret()
		},

		insts.OpPUSH1: push(Size1),
		insts.OpPUSH2: push(Size2),
		insts.OpPUSH4: push(Size4),
		insts.OpPUSH8: push(Size8),
		insts.OpPOP1:  pop(Size1),
		insts.OpPOP2:  pop(Size2),
		insts.OpPOP4:  pop(Size4),
		insts.OpPOP8:  pop(Size8),
	}

	for op, cond := range jumpConds {
		h[op] = jump(cond)
	}

	return h
}
