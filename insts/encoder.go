// Package insts provides vm64 instruction definitions, decoding and encoding.
package insts

import (
	"encoding/binary"
	"fmt"
)

// EncodeOP encodes an instruction without operands.
func EncodeOP(op Op) uint64 {
	return uint64(op) << 48
}

// EncodeR encodes a single-register instruction.
func EncodeR(op Op, rd uint8) uint64 {
	return uint64(op)<<48 | uint64(rd&0xF)<<44
}

// EncodeRR encodes a register-register instruction.
func EncodeRR(op Op, rd, rs uint8) uint64 {
	return uint64(op)<<48 | uint64(rd&0xF)<<4 | uint64(rs&0xF)
}

// EncodeRI encodes a register-immediate instruction as two words.
func EncodeRI(op Op, rd uint8, imm uint64) []uint64 {
	return []uint64{EncodeR(op, rd), imm}
}

// Encode encodes a decoded instruction back into its words, choosing the
// layout from the opcode's format.
func Encode(inst Instruction) ([]uint64, error) {
	info, ok := opTable[inst.Op]
	if !ok {
		return nil, fmt.Errorf("%w 0x%04X", ErrUnknownOpcode, uint16(inst.Op))
	}

	switch info.Format {
	case FormatR:
		return []uint64{EncodeR(inst.Op, inst.Rd)}, nil
	case FormatRR:
		return []uint64{EncodeRR(inst.Op, inst.Rd, inst.Rs)}, nil
	case FormatRI:
		return EncodeRI(inst.Op, inst.Rd, inst.Imm), nil
	default:
		return []uint64{EncodeOP(inst.Op)}, nil
	}
}

// WordsToBytes lays out instruction words as little-endian bytes.
func WordsToBytes(words []uint64) []byte {
	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

// Builder assembles a program from encoded instructions. Jump and call
// targets may reference labels that are resolved against the load base when
// the program is built.
type Builder struct {
	words  []uint64
	labels map[string]int
	fixups map[int]string
	err    error
}

// NewBuilder creates an empty program builder.
func NewBuilder() *Builder {
	return &Builder{
		labels: make(map[string]int),
		fixups: make(map[int]string),
	}
}

// Label marks the current position with a name.
func (b *Builder) Label(name string) *Builder {
	if _, dup := b.labels[name]; dup && b.err == nil {
		b.err = fmt.Errorf("duplicate label %q", name)
	}
	b.labels[name] = len(b.words)
	return b
}

// Op appends an instruction without operands.
func (b *Builder) Op(op Op) *Builder {
	b.words = append(b.words, EncodeOP(op))
	return b
}

// R appends a single-register instruction.
func (b *Builder) R(op Op, rd uint8) *Builder {
	b.words = append(b.words, EncodeR(op, rd))
	return b
}

// RR appends a register-register instruction.
func (b *Builder) RR(op Op, rd, rs uint8) *Builder {
	b.words = append(b.words, EncodeRR(op, rd, rs))
	return b
}

// RI appends a register-immediate instruction.
func (b *Builder) RI(op Op, rd uint8, imm uint64) *Builder {
	b.words = append(b.words, EncodeRI(op, rd, imm)...)
	return b
}

// To appends a jump or call whose target is a label.
func (b *Builder) To(op Op, label string) *Builder {
	b.words = append(b.words, EncodeR(op, 0))
	b.fixups[len(b.words)] = label
	b.words = append(b.words, 0)
	return b
}

// Data appends raw data words.
func (b *Builder) Data(words ...uint64) *Builder {
	b.words = append(b.words, words...)
	return b
}

// Addr returns the address a label resolves to for the given load base.
func (b *Builder) Addr(label string, base uint64) (uint64, bool) {
	idx, ok := b.labels[label]
	if !ok {
		return 0, false
	}
	return base + uint64(idx)*8, true
}

// Words resolves labels against the load base and returns the program words.
func (b *Builder) Words(base uint64) ([]uint64, error) {
	if b.err != nil {
		return nil, b.err
	}

	out := make([]uint64, len(b.words))
	copy(out, b.words)

	for idx, label := range b.fixups {
		addr, ok := b.Addr(label, base)
		if !ok {
			return nil, fmt.Errorf("undefined label %q", label)
		}
		out[idx] = addr
	}

	return out, nil
}

// Bytes resolves labels and returns the little-endian program image.
func (b *Builder) Bytes(base uint64) ([]byte, error) {
	words, err := b.Words(base)
	if err != nil {
		return nil, err
	}
	return WordsToBytes(words), nil
}

// MustBytes is like Bytes but panics on error. It is intended for programs
// built from constants, such as tests and built-in benchmarks.
func (b *Builder) MustBytes(base uint64) []byte {
	buf, err := b.Bytes(base)
	if err != nil {
		panic(err)
	}
	return buf
}
