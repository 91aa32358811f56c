// Package emu provides functional vm64 emulation.
package emu

import "github.com/sarchlab/vm64/insts"

// execFunc executes one decoded instruction on the CPU.
type execFunc func(c *CPU, inst *insts.Instruction) error

// execTable maps every opcode of the instruction set to its handler. The
// decoder's format table and this table must cover the same opcodes.
var execTable map[insts.Op]execFunc

func init() {
	execTable = make(map[insts.Op]execFunc)
	for _, group := range []map[insts.Op]execFunc{
		controlHandlers(),
		arithHandlers(),
		logicHandlers(),
		memoryHandlers(),
		flowHandlers(),
		ioHandlers(),
		fpuHandlers(),
	} {
		for op, h := range group {
			if _, dup := execTable[op]; dup {
				panic("emu: duplicate handler for " + op.String())
			}
			execTable[op] = h
		}
	}
}

// HasHandler reports whether the CPU can execute the opcode.
func HasHandler(op insts.Op) bool {
	_, ok := execTable[op]
	return ok
}

// HandledOps returns the number of opcodes with a handler.
func HandledOps() int {
	return len(execTable)
}

func controlHandlers() map[insts.Op]execFunc {
	return map[insts.Op]execFunc{
		insts.OpHALT: func(c *CPU, _ *insts.Instruction) error {
			c.running.Store(false)
			return nil
		},
		insts.OpNOP: func(*CPU, *insts.Instruction) error { return nil },
	}
}
