// Package loader reads vm64 program images and places them in memory.
package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/vm64/emu"
)

// Format identifies the encoding of a program image.
type Format int

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = iota
	// FormatListing is a relocatable word listing: one 16-hex-digit word
	// per line, with [XXXX] lines holding addresses relative to the base.
	FormatListing
	// FormatDump is a memory text dump as written by Memory.SaveText.
	FormatDump
	// FormatBinary is a raw little-endian image.
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatListing:
		return "listing"
	case FormatDump:
		return "dump"
	case FormatBinary:
		return "binary"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "listing", "hex":
		return FormatListing, nil
	case "dump", "mem":
		return FormatDump, nil
	case "binary", "bin":
		return FormatBinary, nil
	}
	return FormatAuto, fmt.Errorf("unknown image format %q", name)
}

// FormatFor guesses the format of a file from its extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".img":
		return FormatBinary
	case ".dump", ".mem":
		return FormatDump
	}
	return FormatListing
}

// Segment is a contiguous block of bytes to place in memory.
type Segment struct {
	// Addr is the address of the first byte.
	Addr uint64
	// Data holds the segment contents.
	Data []byte
}

// End returns the address just past the segment.
func (s Segment) End() uint64 {
	return s.Addr + uint64(len(s.Data))
}

// Program is a loaded image ready to be applied to a memory.
type Program struct {
	// EntryPoint is the address where execution begins.
	EntryPoint uint64
	// InitialSP is the initial stack pointer.
	InitialSP uint64
	// Segments holds the image contents.
	Segments []Segment
}

// End returns the address just past the highest segment.
func (p *Program) End() uint64 {
	var end uint64
	for _, s := range p.Segments {
		end = max(end, s.End())
	}
	return end
}

// Size returns the total number of image bytes.
func (p *Program) Size() int {
	n := 0
	for _, s := range p.Segments {
		n += len(s.Data)
	}
	return n
}

// Loadable is a memory that accepts bulk copies.
type Loadable interface {
	Load(addr uint64, data []byte) error
}

// LoadInto copies every segment into mem.
func (p *Program) LoadInto(mem Loadable) error {
	for _, s := range p.Segments {
		if err := mem.Load(s.Addr, s.Data); err != nil {
			return fmt.Errorf("failed to load segment at 0x%x: %w", s.Addr, err)
		}
	}
	return nil
}

// Options controls how an image is read.
type Options struct {
	// Format selects the image format. FormatAuto uses the file extension.
	Format Format
	// Base is the load address for listings and binaries. Dumps always
	// start at 0.
	Base uint64
	// StackPointer is the initial SP. Zero selects emu.DefaultStackPointer.
	StackPointer uint64
}

// Load reads the image at path.
func Load(path string, opts Options) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	if opts.Format == FormatAuto {
		opts.Format = FormatFor(path)
	}

	prog, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Read parses an image from r. FormatAuto is treated as FormatListing.
func Read(r io.Reader, opts Options) (*Program, error) {
	var (
		seg Segment
		err error
	)

	switch opts.Format {
	case FormatAuto, FormatListing:
		var words []uint64
		words, err = ParseListing(r, opts.Base)
		seg = Segment{Addr: opts.Base, Data: wordsToBytes(words)}
	case FormatDump:
		seg.Data, err = ParseDump(r)
		opts.Base = 0
	case FormatBinary:
		seg.Addr = opts.Base
		seg.Data, err = io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unknown image format %v", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	prog := &Program{
		EntryPoint: opts.Base,
		InitialSP:  opts.StackPointer,
	}
	if prog.InitialSP == 0 {
		prog.InitialSP = emu.DefaultStackPointer
	}
	if len(seg.Data) > 0 {
		prog.Segments = append(prog.Segments, seg)
	}
	return prog, nil
}

// Words returns the program's words in little-endian order, starting at
// the first segment. Trailing bytes that do not fill a word are zero padded.
func (p *Program) Words() []uint64 {
	if len(p.Segments) == 0 {
		return nil
	}
	data := p.Segments[0].Data
	words := make([]uint64, (len(data)+7)/8)
	for i := range words {
		var buf [8]byte
		copy(buf[:], data[i*8:])
		words[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return words
}

// WriteListing writes the absolute form of the program: one word per line
// as 16 upper-case hex digits.
func (p *Program) WriteListing(w io.Writer) error {
	var buf bytes.Buffer
	for _, word := range p.Words() {
		fmt.Fprintf(&buf, "%016X\n", word)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func wordsToBytes(words []uint64) []byte {
	out := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}
