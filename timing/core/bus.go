package core

import "github.com/sarchlab/vm64/emu"

// Access is one data memory access made by an instruction.
type Access struct {
	Addr  uint64
	Size  emu.Size
	Write bool
	Value uint64
}

// recordingBus forwards to the wrapped bus and records every successful
// sized read and write. Bytes is used for instruction fetch and is not
// recorded.
type recordingBus struct {
	emu.Bus
	accesses []Access
}

func (b *recordingBus) Read(addr uint64, size emu.Size) (uint64, error) {
	v, err := b.Bus.Read(addr, size)
	if err == nil {
		b.accesses = append(b.accesses, Access{Addr: addr, Size: size, Value: v})
	}
	return v, err
}

func (b *recordingBus) Write(addr uint64, value uint64, size emu.Size) error {
	err := b.Bus.Write(addr, value, size)
	if err == nil {
		b.accesses = append(b.accesses, Access{Addr: addr, Size: size, Write: true, Value: value})
	}
	return err
}

func (b *recordingBus) reset() {
	b.accesses = b.accesses[:0]
}

// SymbolAt forwards symbol lookups so traces under the timing core still
// name addresses.
func (b *recordingBus) SymbolAt(addr uint64) (emu.Symbol, bool) {
	if syms, ok := b.Bus.(interface {
		SymbolAt(addr uint64) (emu.Symbol, bool)
	}); ok {
		return syms.SymbolAt(addr)
	}
	return emu.Symbol{}, false
}
