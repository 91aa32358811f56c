package cache

import (
	"github.com/sarchlab/vm64/emu"
)

// BusBacking adapts an emu.Bus to a BackingStore. Bytes outside the bus
// read as zero and writes outside it are dropped.
type BusBacking struct {
	bus emu.Bus
}

// NewBusBacking creates a new BusBacking adapter.
func NewBusBacking(bus emu.Bus) *BusBacking {
	return &BusBacking{bus: bus}
}

// Read fetches size bytes starting at addr.
func (b *BusBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		v, err := b.bus.Read(addr+uint64(i), emu.Size1)
		if err != nil {
			break
		}
		data[i] = byte(v)
	}
	return data
}

// Write stores data starting at addr.
func (b *BusBacking) Write(addr uint64, data []byte) {
	for i, v := range data {
		if err := b.bus.Write(addr+uint64(i), uint64(v), emu.Size1); err != nil {
			return
		}
	}
}
