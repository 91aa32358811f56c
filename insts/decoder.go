// Package insts provides vm64 instruction definitions, decoding and encoding.
package insts

import (
	"errors"
	"fmt"
)

// ErrUnknownOpcode is returned when an instruction word carries an opcode
// that is not part of the instruction set.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Decoder decodes vm64 instruction words.
type Decoder struct{}

// NewDecoder creates a new vm64 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a single 64-bit instruction word. For RI instructions the
// immediate lives in the following word, so the returned Imm is zero and the
// caller is responsible for fetching it.
func (d *Decoder) Decode(word uint64) (*Instruction, error) {
	op := OpcodeOf(word)

	info, ok := opTable[op]
	if !ok {
		return nil, fmt.Errorf("%w 0x%04X", ErrUnknownOpcode, uint16(op))
	}

	inst := &Instruction{
		Op:     op,
		Format: info.Format,
		Word:   word,
	}

	switch info.Format {
	case FormatR, FormatRI:
		inst.Rd = uint8((word >> 44) & 0xF)
	case FormatRR:
		inst.Rd = uint8((word >> 4) & 0xF)
		inst.Rs = uint8(word & 0xF)
	}

	return inst, nil
}

// OpcodeOf extracts the opcode field (bits [63:48]) of an instruction word.
func OpcodeOf(word uint64) Op {
	return Op(word >> 48)
}
