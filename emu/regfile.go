// Package emu provides functional vm64 emulation.
package emu

import "fmt"

// NumRegs is the number of general-purpose registers.
const NumRegs = 16

// SPReg is the register that holds the stack pointer.
const SPReg = 15

// RegFile represents the vm64 register file.
// It contains 16 general-purpose 64-bit registers (R0-R15), the program
// counter and the condition flags. R15 doubles as the stack pointer.
type RegFile struct {
	// R holds general-purpose registers R0-R15.
	R [NumRegs]uint64

	// PC is the program counter, the byte address of the next instruction word.
	PC uint64

	// Flags holds the condition flags.
	Flags Flags
}

// Flags represents the condition flags.
type Flags struct {
	// Z is the zero flag.
	Z bool
	// N is the negative flag.
	N bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

// SetZN updates Z and N from a value of the given width, leaving C and V
// untouched.
func (f *Flags) SetZN(value uint64, size Size) {
	value &= size.Mask()
	f.Z = value == 0
	f.N = value&size.SignBit() != 0
}

// Reset clears all four flags.
func (f *Flags) Reset() {
	*f = Flags{}
}

// String formats the flags as "Z=1 N=0 C=0 V=0".
func (f Flags) String() string {
	return fmt.Sprintf("Z=%d N=%d C=%d V=%d", b2i(f.Z), b2i(f.N), b2i(f.C), b2i(f.V))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ReadReg reads the full 64-bit value of a register.
// Registers >= 16 return 0.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	if reg >= NumRegs {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes the full 64-bit value of a register.
// Writes to registers >= 16 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	if reg >= NumRegs {
		return
	}
	r.R[reg] = value
}

// Read reads the low size bytes of a register.
func (r *RegFile) Read(reg uint8, size Size) uint64 {
	return r.ReadReg(reg) & size.Mask()
}

// Write masks value to size bytes and replaces the whole register with it.
// The upper bytes become zero; a sized write never merges with the previous
// contents.
func (r *RegFile) Write(reg uint8, value uint64, size Size) {
	r.WriteReg(reg, value&size.Mask())
}

// SP returns the stack pointer (R15).
func (r *RegFile) SP() uint64 {
	return r.R[SPReg]
}

// SetSP sets the stack pointer (R15).
func (r *RegFile) SetSP(sp uint64) {
	r.R[SPReg] = sp
}

// Reset zeroes every register, the PC and the flags.
func (r *RegFile) Reset() {
	*r = RegFile{}
}
