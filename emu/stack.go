// Package emu provides functional vm64 emulation.
package emu

import "fmt"

// StackUnit implements the vm64 stack. The stack grows upward: SP (R15) is
// the address of the next free slot, a push writes at SP and then advances
// it, and a pop retreats SP before reading.
type StackUnit struct {
	regFile *RegFile
	bus     Bus

	// base is the lowest address SP may retreat to.
	base uint64

	// limit is one past the highest address a push may write. Zero means
	// the end of memory.
	limit uint64
}

// NewStackUnit creates a new StackUnit spanning the whole memory.
func NewStackUnit(regFile *RegFile, bus Bus) *StackUnit {
	return &StackUnit{regFile: regFile, bus: bus}
}

// SetBounds restricts the stack to [base, limit). A zero limit means the
// end of memory.
func (s *StackUnit) SetBounds(base, limit uint64) {
	s.base = base
	s.limit = limit
}

// Bounds returns the stack region.
func (s *StackUnit) Bounds() (base, limit uint64) {
	return s.base, s.top()
}

func (s *StackUnit) top() uint64 {
	if s.limit == 0 || s.limit > s.bus.Len() {
		return s.bus.Len()
	}
	return s.limit
}

// Push writes the low size bytes of value at SP and advances SP by size.
func (s *StackUnit) Push(value uint64, size Size) error {
	sp := s.regFile.SP()
	top := s.top()
	if sp > top || uint64(size) > top-sp {
		return fmt.Errorf("%w: push of %d bytes at SP=0x%X (top 0x%X)", ErrStackOverflow, size, sp, top)
	}

	if err := s.bus.Write(sp, value, size); err != nil {
		return err
	}
	s.regFile.SetSP(sp + uint64(size))
	return nil
}

// Pop retreats SP by size and reads the size-byte value there.
func (s *StackUnit) Pop(size Size) (uint64, error) {
	sp := s.regFile.SP()
	if sp < s.base || sp-s.base < uint64(size) {
		return 0, fmt.Errorf("%w: pop of %d bytes at SP=0x%X (base 0x%X)", ErrStackUnderflow, size, sp, s.base)
	}

	value, err := s.bus.Read(sp-uint64(size), size)
	if err != nil {
		return 0, err
	}
	s.regFile.SetSP(sp - uint64(size))
	return value, nil
}

// Call pushes the current PC as an 8-byte return address and jumps to
// target. PC must already point past the call instruction.
func (s *StackUnit) Call(target uint64) error {
	if err := s.Push(s.regFile.PC, Size8); err != nil {
		return err
	}
	s.regFile.PC = target
	return nil
}

// Ret pops an 8-byte return address into PC.
func (s *StackUnit) Ret() error {
	addr, err := s.Pop(Size8)
	if err != nil {
		return err
	}
	s.regFile.PC = addr
	return nil
}
