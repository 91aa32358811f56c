// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

func movRR(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.regFile.Write(inst.Rd, c.regFile.Read(inst.Rs, size), size)
		return nil
	}
}

func movRI(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		c.regFile.Write(inst.Rd, inst.Imm, size)
		return nil
	}
}

// loadAbs loads from the immediate address.
func loadAbs(size Size, setZN bool) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		if err := c.lsu.Load(inst.Rd, inst.Imm, size); err != nil {
			return err
		}
		if setZN {
			c.regFile.Flags.SetZN(c.regFile.ReadReg(inst.Rd), size)
		}
		return nil
	}
}

// loadInd loads from the address held in Rs.
func loadInd(size Size, setZN bool) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		if err := c.lsu.Load(inst.Rd, c.regFile.ReadReg(inst.Rs), size); err != nil {
			return err
		}
		if setZN {
			c.regFile.Flags.SetZN(c.regFile.ReadReg(inst.Rd), size)
		}
		return nil
	}
}

// storeAbs stores Rd to the immediate address.
func storeAbs(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		return c.lsu.Store(inst.Rd, inst.Imm, size)
	}
}

// storeInd stores Rd to the address held in Rs.
func storeInd(size Size) execFunc {
	return func(c *CPU, inst *insts.Instruction) error {
		return c.lsu.Store(inst.Rd, c.regFile.ReadReg(inst.Rs), size)
	}
}

func memoryHandlers() map[insts.Op]execFunc {
	h := map[insts.Op]execFunc{
		insts.OpLOAD:  loadAbs(Size8, true),
		insts.OpLOADB: loadInd(Size1, true),
		insts.OpSTORE: storeAbs(Size8),
		insts.OpLOADV: func(c *CPU, inst *insts.Instruction) error {
			c.regFile.WriteReg(inst.Rd, inst.Imm)
			c.regFile.Flags.SetZN(inst.Imm, Size8)
			return nil
		},
		insts.OpCLEAR: func(c *CPU, inst *insts.Instruction) error {
			c.regFile.WriteReg(inst.Rd, 0)
			c.regFile.Flags = Flags{Z: true}
			return nil
		},
	}

	sized := []struct {
		size                   Size
		mov, movv, load, loadr insts.Op
		store, storer          insts.Op
	}{
		{Size1, insts.OpMOV1, insts.OpMOVV1, insts.OpLOAD1, insts.OpLOADR1, insts.OpSTORE1, insts.OpSTORER1},
		{Size2, insts.OpMOV2, insts.OpMOVV2, insts.OpLOAD2, insts.OpLOADR2, insts.OpSTORE2, insts.OpSTORER2},
		{Size4, insts.OpMOV4, insts.OpMOVV4, insts.OpLOAD4, insts.OpLOADR4, insts.OpSTORE4, insts.OpSTORER4},
		{Size8, insts.OpMOV8, insts.OpMOVV8, insts.OpLOAD8, insts.OpLOADR8, insts.OpSTORE8, insts.OpSTORER8},
	}
	for _, s := range sized {
		h[s.mov] = movRR(s.size)
		h[s.movv] = movRI(s.size)
		h[s.load] = loadAbs(s.size, false)
		h[s.loadr] = loadInd(s.size, false)
		h[s.store] = storeAbs(s.size)
		h[s.storer] = storeInd(s.size)
	}

	return h
}
