// Package emu provides functional vm64 emulation.
package emu

import "fmt"

// Size is an operand width in bytes.
type Size uint8

// Operand widths.
const (
	Size1 Size = 1
	Size2 Size = 2
	Size4 Size = 4
	Size8 Size = 8
)

// Sizes lists every valid operand width in ascending order.
var Sizes = []Size{Size1, Size2, Size4, Size8}

// Valid reports whether s is one of 1, 2, 4 or 8.
func (s Size) Valid() bool {
	return s == Size1 || s == Size2 || s == Size4 || s == Size8
}

// Bits returns the width in bits.
func (s Size) Bits() uint {
	return uint(s) * 8
}

// Mask returns the all-ones value of the width.
func (s Size) Mask() uint64 {
	if s >= Size8 {
		return ^uint64(0)
	}
	return (uint64(1) << s.Bits()) - 1
}

// SignBit returns the most significant bit of the width.
func (s Size) SignBit() uint64 {
	return uint64(1) << (s.Bits() - 1)
}

// SignExtend interprets the low bytes of v as a two's complement value of
// this width.
func (s Size) SignExtend(v uint64) int64 {
	shift := 64 - s.Bits()
	return int64(v<<shift) >> shift
}

// String returns the width as "<n>B".
func (s Size) String() string {
	return fmt.Sprintf("%dB", uint8(s))
}
