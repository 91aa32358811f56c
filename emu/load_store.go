// Package emu provides functional vm64 emulation.
package emu

// LoadStoreUnit moves sized values between registers and memory.
type LoadStoreUnit struct {
	regFile *RegFile
	bus     Bus
}

// NewLoadStoreUnit creates a new LoadStoreUnit.
func NewLoadStoreUnit(regFile *RegFile, bus Bus) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, bus: bus}
}

// Load reads size bytes at addr into register rd, zero-extended.
func (l *LoadStoreUnit) Load(rd uint8, addr uint64, size Size) error {
	value, err := l.bus.Read(addr, size)
	if err != nil {
		return err
	}
	l.regFile.Write(rd, value, size)
	return nil
}

// Store writes the low size bytes of register rs to addr.
func (l *LoadStoreUnit) Store(rs uint8, addr uint64, size Size) error {
	return l.bus.Write(addr, l.regFile.Read(rs, size), size)
}
