// Package debug provides a stepping debugger for the vm64 CPU.
//
// Breakpoints stop execution when the PC reaches an address. Conditions are
// Starlark expressions evaluated against the CPU state after every
// instruction, for example
//
//	r2 == 15 and z
//	mem(0x100, 8) > 3 or cycles >= 1000
package debug

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/sarchlab/vm64/emu"
)

// Condition is a compiled boolean expression over the CPU state. The
// expression can use r0..r15, sp, pc, the flags z, n, c and v, cycles and
// the builtin mem(addr, size=8).
type Condition struct {
	src  string
	opts syntax.FileOptions
}

// Compile parses a condition expression.
func Compile(src string) (*Condition, error) {
	c := &Condition{src: src}
	if _, err := c.opts.ParseExpr("condition", src, 0); err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", src, err)
	}
	return c, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Condition {
	c, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the source of the condition.
func (c *Condition) String() string {
	return c.src
}

// Eval evaluates the condition against the CPU and reports its truth.
func (c *Condition) Eval(cpu *emu.CPU) (bool, error) {
	thread := &starlark.Thread{Name: "condition"}
	v, err := starlark.EvalOptions(&c.opts, thread, "condition", c.src, env(cpu))
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", c.src, err)
	}
	return bool(v.Truth()), nil
}

// env builds the predeclared names for one evaluation.
func env(cpu *emu.CPU) starlark.StringDict {
	regFile := cpu.RegFile()
	flags := cpu.Flags()

	d := starlark.StringDict{
		"pc":     starlark.MakeUint64(cpu.PC()),
		"sp":     starlark.MakeUint64(cpu.SP()),
		"z":      starlark.Bool(flags.Z),
		"n":      starlark.Bool(flags.N),
		"c":      starlark.Bool(flags.C),
		"v":      starlark.Bool(flags.V),
		"cycles": starlark.MakeUint64(cpu.Cycles()),
		"mem":    starlark.NewBuiltin("mem", memBuiltin(cpu)),
	}
	for i := uint8(0); i < emu.NumRegs; i++ {
		d[fmt.Sprintf("r%d", i)] = starlark.MakeUint64(regFile.ReadReg(i))
	}
	return d
}

// memBuiltin reads size bytes (1, 2, 4 or 8) from the CPU bus.
func memBuiltin(cpu *emu.CPU) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var addrV starlark.Value
		size := 8
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "addr", &addrV, "size?", &size); err != nil {
			return nil, err
		}

		var addr uint64
		if err := starlark.AsInt(addrV, &addr); err != nil {
			return nil, fmt.Errorf("%s: addr: %w", b.Name(), err)
		}
		if !emu.Size(size).Valid() {
			return nil, fmt.Errorf("%s: %w: %d", b.Name(), emu.ErrInvalidSize, size)
		}

		v, err := cpu.Bus().Read(addr, emu.Size(size))
		if err != nil {
			return nil, err
		}
		return starlark.MakeUint64(v), nil
	}
}
