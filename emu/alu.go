// Package emu provides functional vm64 emulation.
package emu

import (
	"math"
	"math/bits"
)

// ALU implements vm64 integer arithmetic and logic operations.
//
// Arithmetic operations take raw operand bits, work modulo 2^(8*size) and
// overwrite all four flags of the connected register file. They never fail:
// division and modulo by zero return 0 with V set.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Add returns a + b at the given width.
// C is set when the unsigned sum does not fit, V on signed overflow.
func (a *ALU) Add(x, y uint64, size Size, signed bool) uint64 {
	mask := size.Mask()
	x &= mask
	y &= mask

	var carry bool
	var result uint64
	if size == Size8 {
		var c uint64
		result, c = bits.Add64(x, y, 0)
		carry = c != 0
	} else {
		sum := x + y
		carry = sum > mask
		result = sum & mask
	}

	overflow := (x^result)&(y^result)&size.SignBit() != 0
	a.setFlags(result, size, carry, overflow)
	return result
}

// Sub returns a - b at the given width.
// C is set when a < b unsigned (borrow), V on signed overflow.
func (a *ALU) Sub(x, y uint64, size Size, signed bool) uint64 {
	mask := size.Mask()
	x &= mask
	y &= mask

	result := (x - y) & mask
	borrow := x < y
	overflow := (x^y)&(x^result)&size.SignBit() != 0
	a.setFlags(result, size, borrow, overflow)
	return result
}

// Mul returns a * b at the given width. When the full product does not fit
// the width (unsigned range, or signed range when signed is set), both C
// and V are set.
func (a *ALU) Mul(x, y uint64, size Size, signed bool) uint64 {
	mask := size.Mask()
	x &= mask
	y &= mask

	var overflow bool
	var result uint64
	if signed {
		sx, sy := size.SignExtend(x), size.SignExtend(y)
		p := sx * sy
		if size == Size8 {
			overflow = sx != 0 && (p/sx != sy || (sx == -1 && sy == math.MinInt64))
		} else {
			lo, hi := -int64(size.SignBit()), int64(size.SignBit())
			overflow = p < lo || p >= hi
		}
		result = uint64(p) & mask
	} else {
		hi, lo := bits.Mul64(x, y)
		overflow = hi != 0 || lo > mask
		result = lo & mask
	}

	a.setFlags(result, size, overflow, overflow)
	return result
}

// Div returns the quotient a / b at the given width. Signed division
// truncates toward zero. Division by zero returns 0 and sets V. The signed
// quotient of the most negative value by -1 wraps and sets V.
func (a *ALU) Div(x, y uint64, size Size, signed bool) uint64 {
	mask := size.Mask()
	x &= mask
	y &= mask

	if y == 0 {
		a.setFlags(0, size, false, true)
		return 0
	}

	if !signed {
		result := x / y
		a.setFlags(result, size, false, false)
		return result
	}

	sx, sy := size.SignExtend(x), size.SignExtend(y)
	q := sx / sy
	overflow := sy == -1 && sx == -int64(size.SignBit())
	if size == Size8 {
		overflow = sy == -1 && sx == math.MinInt64
	}
	result := uint64(q) & mask
	a.setFlags(result, size, false, overflow)
	return result
}

// Mod returns the remainder of a / b at the given width. The signed
// remainder takes the sign of the dividend. Modulo by zero returns 0 and
// sets V.
func (a *ALU) Mod(x, y uint64, size Size, signed bool) uint64 {
	mask := size.Mask()
	x &= mask
	y &= mask

	if y == 0 {
		a.setFlags(0, size, false, true)
		return 0
	}

	var result uint64
	if signed {
		sx, sy := size.SignExtend(x), size.SignExtend(y)
		if sy == -1 {
			result = 0
		} else {
			result = uint64(sx%sy) & mask
		}
	} else {
		result = x % y
	}

	a.setFlags(result, size, false, false)
	return result
}

// And returns x & y and updates Z and N.
func (a *ALU) And(x, y uint64) uint64 {
	return a.logic(x & y)
}

// Or returns x | y and updates Z and N.
func (a *ALU) Or(x, y uint64) uint64 {
	return a.logic(x | y)
}

// Xor returns x ^ y and updates Z and N.
func (a *ALU) Xor(x, y uint64) uint64 {
	return a.logic(x ^ y)
}

// Not returns ^x and updates Z and N.
func (a *ALU) Not(x uint64) uint64 {
	return a.logic(^x)
}

// ShiftLeft shifts x left by its own low six bits and updates Z and N.
func (a *ALU) ShiftLeft(x uint64) uint64 {
	return a.logic(x << (x & 0x3F))
}

// ShiftRightArith shifts x right by its own low six bits, replicating the
// sign bit, and updates Z and N.
func (a *ALU) ShiftRightArith(x uint64) uint64 {
	return a.logic(uint64(int64(x) >> (x & 0x3F)))
}

// ShiftRightLogical shifts x right by its own low six bits, filling with
// zeros, and updates Z and N.
func (a *ALU) ShiftRightLogical(x uint64) uint64 {
	return a.logic(x >> (x & 0x3F))
}

// logic updates Z and N for a 64-bit logic result. C and V keep their
// previous values.
func (a *ALU) logic(result uint64) uint64 {
	a.regFile.Flags.SetZN(result, Size8)
	return result
}

// setFlags overwrites all four flags from a masked result.
func (a *ALU) setFlags(result uint64, size Size, carry, overflow bool) {
	f := &a.regFile.Flags
	f.SetZN(result, size)
	f.C = carry
	f.V = overflow
}
