// Package emu provides functional vm64 emulation.
package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vm64/insts"
)

// Fatal error classes. A run stops on any of them; use errors.Is to test
// the class of an error returned by CPU.Tick or CPU.Run.
var (
	// ErrAddressOutOfRange reports a memory access outside the memory.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrInvalidSize reports an access width other than 1, 2, 4 or 8 bytes.
	ErrInvalidSize = errors.New("invalid access size")

	// ErrStackOverflow reports a push or call that would move SP past the
	// top of the stack region.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow reports a pop or return with fewer bytes on the
	// stack than requested.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrCycleLimit reports that Run exceeded its cycle ceiling.
	ErrCycleLimit = errors.New("cycle limit exceeded")

	// ErrHalted reports an attempt to step a halted CPU.
	ErrHalted = errors.New("cpu halted")
)

// AddressError describes an out-of-range memory access.
type AddressError struct {
	Addr  uint64
	Size  uint64
	Limit uint64
}

// Error implements the error interface.
func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: 0x%X+%d (memory size 0x%X)", ErrAddressOutOfRange, e.Addr, e.Size, e.Limit)
}

// Unwrap returns ErrAddressOutOfRange.
func (e *AddressError) Unwrap() error {
	return ErrAddressOutOfRange
}

// ExecError is a fatal error raised while stepping the CPU. It carries the
// address of the failing instruction, its opcode if it was decoded, and the
// memory address involved if any.
type ExecError struct {
	PC      uint64
	Op      insts.Op
	Decoded bool
	Addr    uint64
	HasAddr bool
	Err     error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	msg := fmt.Sprintf("PC=0x%X", e.PC)
	if e.Decoded {
		msg += fmt.Sprintf(" op=%s(0x%04X)", e.Op, uint16(e.Op))
	}
	if e.HasAddr {
		msg += fmt.Sprintf(" addr=0x%X", e.Addr)
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error {
	return e.Err
}
