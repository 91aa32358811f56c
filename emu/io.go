// Package emu provides functional vm64 emulation.
package emu

import (
	"sort"

	"github.com/go-logr/logr"
)

// Device is an address-mapped peripheral.
type Device interface {
	// Read returns the next value produced by the device.
	Read() uint64

	// Write delivers a value to the device.
	Write(value uint64)
}

// Shower is implemented by devices with a display behavior, triggered by
// SHOWIO.
type Shower interface {
	Show()
}

// Resetter is implemented by devices that can return to their power-on
// state, triggered by CLRIO and RESETIO.
type Resetter interface {
	Reset()
}

// IOSystem maps I/O addresses to devices. Accesses to unmapped addresses
// are tolerated: writes are dropped and reads return 0, each with a logged
// warning.
type IOSystem struct {
	devices map[uint64]Device
	log     logr.Logger
}

// IOOption is a functional option for configuring the IOSystem.
type IOOption func(*IOSystem)

// WithIOLogger sets the logger that receives unmapped-address warnings.
func WithIOLogger(log logr.Logger) IOOption {
	return func(s *IOSystem) {
		s.log = log
	}
}

// NewIOSystem creates an IOSystem with no devices.
func NewIOSystem(opts ...IOOption) *IOSystem {
	s := &IOSystem{
		devices: make(map[uint64]Device),
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register maps a device at addr, replacing any device already there.
func (s *IOSystem) Register(addr uint64, dev Device) {
	s.devices[addr] = dev
}

// Device returns the device mapped at addr.
func (s *IOSystem) Device(addr uint64) (Device, bool) {
	dev, ok := s.devices[addr]
	return dev, ok
}

// Addresses returns the mapped addresses in ascending order.
func (s *IOSystem) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(s.devices))
	for addr := range s.devices {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Write sends value to the device at addr.
func (s *IOSystem) Write(addr, value uint64) {
	dev, ok := s.devices[addr]
	if !ok {
		s.log.Info("write to unmapped I/O address dropped", "addr", addr, "value", value)
		return
	}
	dev.Write(value)
}

// Read returns the next value of the device at addr, or 0 if none is mapped.
func (s *IOSystem) Read(addr uint64) uint64 {
	dev, ok := s.devices[addr]
	if !ok {
		s.log.Info("read from unmapped I/O address returns 0", "addr", addr)
		return 0
	}
	return dev.Read()
}

// Show triggers the display behavior of the device at addr. Devices
// without one are left alone.
func (s *IOSystem) Show(addr uint64) {
	dev, ok := s.devices[addr]
	if !ok {
		s.log.Info("show on unmapped I/O address ignored", "addr", addr)
		return
	}
	if shower, ok := dev.(Shower); ok {
		shower.Show()
	}
}

// Reset resets every device that supports it.
func (s *IOSystem) Reset() {
	for _, addr := range s.Addresses() {
		if r, ok := s.devices[addr].(Resetter); ok {
			r.Reset()
		}
	}
}
