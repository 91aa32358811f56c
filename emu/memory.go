// Package emu provides functional vm64 emulation.
package emu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Bus is the memory contract consumed by the CPU. All accesses are
// little-endian and bounds-checked.
type Bus interface {
	// Read reads a size-byte value at addr.
	Read(addr uint64, size Size) (uint64, error)

	// Write writes the low size bytes of value at addr.
	Write(addr uint64, value uint64, size Size) error

	// Bytes returns a copy of n raw bytes starting at addr.
	Bytes(addr uint64, n int) ([]byte, error)

	// Len returns the memory size in bytes.
	Len() uint64
}

// Symbol names a region of memory.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// Memory is a flat, byte-addressable memory. It is owned by the embedding
// program and borrowed by the CPU.
//
// Memory is not synchronized. A viewer running on another goroutine while the
// CPU executes must read from Snapshot taken between steps.
type Memory struct {
	data    []byte
	symbols []Symbol
}

// NewMemory creates a zeroed memory of the given size in bytes.
func NewMemory(size uint64) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Len returns the memory size in bytes.
func (m *Memory) Len() uint64 {
	return uint64(len(m.data))
}

func (m *Memory) checkRange(addr, n uint64) error {
	limit := uint64(len(m.data))
	if addr > limit || n > limit-addr {
		return &AddressError{Addr: addr, Size: n, Limit: limit}
	}
	return nil
}

// Read reads a size-byte little-endian value at addr.
func (m *Memory) Read(addr uint64, size Size) (uint64, error) {
	if !size.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if err := m.checkRange(addr, uint64(size)); err != nil {
		return 0, err
	}

	b := m.data[addr : addr+uint64(size)]
	switch size {
	case Size1:
		return uint64(b[0]), nil
	case Size2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case Size4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	default:
		return binary.LittleEndian.Uint64(b), nil
	}
}

// Write stores the low size bytes of value at addr, little-endian.
func (m *Memory) Write(addr uint64, value uint64, size Size) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if err := m.checkRange(addr, uint64(size)); err != nil {
		return err
	}

	b := m.data[addr : addr+uint64(size)]
	switch size {
	case Size1:
		b[0] = byte(value)
	case Size2:
		binary.LittleEndian.PutUint16(b, uint16(value))
	case Size4:
		binary.LittleEndian.PutUint32(b, uint32(value))
	default:
		binary.LittleEndian.PutUint64(b, value)
	}
	return nil
}

// Bytes returns a copy of n bytes starting at addr.
func (m *Memory) Bytes(addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, &AddressError{Addr: addr, Limit: m.Len()}
	}
	if err := m.checkRange(addr, uint64(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[addr:])
	return out, nil
}

// Load copies raw bytes into memory starting at addr.
func (m *Memory) Load(addr uint64, data []byte) error {
	if err := m.checkRange(addr, uint64(len(data))); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	return nil
}

// Clear zeroes the whole memory. Registered symbols are kept.
func (m *Memory) Clear() {
	clear(m.data)
}

// Snapshot returns an independent copy of the memory contents.
func (m *Memory) Snapshot() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Dump writes the bytes in [start, end) as hex, eight bytes per line.
func (m *Memory) Dump(w io.Writer, start, end uint64) error {
	if end < start {
		return fmt.Errorf("dump range end 0x%X before start 0x%X", end, start)
	}
	if err := m.checkRange(start, end-start); err != nil {
		return err
	}

	for addr := start; addr < end; addr += 8 {
		stop := min(addr+8, end)
		if _, err := fmt.Fprintf(w, "%08X: %s\n", addr, hexBytes(m.data[addr:stop])); err != nil {
			return err
		}
	}
	return nil
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}

// SaveText writes the full memory as a text dump: a "# RAM size" header
// followed by "AAAA: XX XX XX XX XX XX XX XX" lines. A short last line is
// padded with zero bytes.
func (m *Memory) SaveText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "# RAM size: %d bytes\n", len(m.data)); err != nil {
		return err
	}

	var line [8]byte
	for addr := 0; addr < len(m.data); addr += 8 {
		n := copy(line[:], m.data[addr:])
		clear(line[n:])
		if _, err := fmt.Fprintf(bw, "%04X: %s\n", addr, hexBytes(line[:])); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadText replaces the memory contents with a text dump produced by
// SaveText. Blank lines and lines starting with '#' are skipped, an optional
// "AAAA:" prefix is ignored, and bytes are stored sequentially from address
// zero. Bytes beyond the memory size are dropped.
func (m *Memory) LoadText(r io.Reader) error {
	m.Clear()

	scanner := bufio.NewScanner(r)
	addr := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			line = line[idx+1:]
		}

		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseUint(field, 16, 8)
			if err != nil {
				return fmt.Errorf("line %d: invalid byte %q: %w", lineNo, field, err)
			}
			if addr < len(m.data) {
				m.data[addr] = byte(v)
			}
			addr++
		}
	}
	return scanner.Err()
}

// RegisterSymbol names the region [addr, addr+size). Registering the same
// name at the same address twice has no effect.
func (m *Memory) RegisterSymbol(name string, addr, size uint64) {
	for _, s := range m.symbols {
		if s.Name == name && s.Addr == addr {
			return
		}
	}
	m.symbols = append(m.symbols, Symbol{Name: name, Addr: addr, Size: size})
}

// SymbolAt returns the most recently registered symbol covering addr.
func (m *Memory) SymbolAt(addr uint64) (Symbol, bool) {
	for i := len(m.symbols) - 1; i >= 0; i-- {
		s := m.symbols[i]
		if addr >= s.Addr && (addr-s.Addr < s.Size || (s.Size == 0 && addr == s.Addr)) {
			return s, true
		}
	}
	return Symbol{}, false
}

// Symbols returns the registered symbols ordered by address.
func (m *Memory) Symbols() []Symbol {
	out := make([]Symbol, len(m.symbols))
	copy(out, m.symbols)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
