// Package insts provides vm64 instruction definitions, decoding and encoding.
package insts

import "fmt"

// Op represents a vm64 opcode. Its value is the opcode field of the
// instruction word.
type Op uint16

// Control opcodes.
const (
	OpHALT Op = 0x0000
	OpNOP  Op = 0x0001
)

// 64-bit arithmetic opcodes.
const (
	OpADD  Op = 0x0010
	OpSUB  Op = 0x0011
	OpMULS Op = 0x0012
	OpMUL  Op = 0x0013
	OpDIV  Op = 0x0014
	OpMOD  Op = 0x0015
	OpADDV Op = 0x0020
	OpSUBV Op = 0x0021
	OpINC  Op = 0x0030
	OpDEC  Op = 0x0031
)

// Logic and shift opcodes.
const (
	OpNOT  Op = 0x0040
	OpAND  Op = 0x0041
	OpANDV Op = 0x0042
	OpOR   Op = 0x0043
	OpORV  Op = 0x0044
	OpXOR  Op = 0x0045
	OpXORV Op = 0x0046
	OpSHL  Op = 0x0050
	OpSAR  Op = 0x0051
	OpSHLU Op = 0x0052
	OpSHR  Op = 0x0053
)

// Legacy 64-bit memory opcodes.
const (
	OpLOAD  Op = 0x0060
	OpLOADV Op = 0x0061
	OpLOADB Op = 0x0062
	OpSTORE Op = 0x0063
	OpCLEAR Op = 0x0064
)

// Compare and flag opcodes.
const (
	OpCMP  Op = 0x0070
	OpCMPV Op = 0x0071
	OpCLRZ Op = 0x0080
	OpSETZ Op = 0x0081
	OpCLRN Op = 0x0082
	OpSETN Op = 0x0083
	OpCLRC Op = 0x0084
	OpSETC Op = 0x0085
	OpCLRV Op = 0x0086
	OpSETV Op = 0x0087
)

// Jump and call opcodes. Targets are absolute addresses.
const (
	OpJMP  Op = 0x0090
	OpJEQ  Op = 0x0091 // Z == 1
	OpJNE  Op = 0x0092 // Z == 0
	OpJMI  Op = 0x0093 // N == 1
	OpJPL  Op = 0x0094 // N == 0
	OpJCS  Op = 0x0095 // C == 1
	OpJCC  Op = 0x0096 // C == 0
	OpJLT  Op = 0x0097 // V != N
	OpJGE  Op = 0x0098 // V == N
	OpCALL Op = 0x0099
	OpRET  Op = 0x0800
)

// I/O opcodes.
const (
	OpSVIO    Op = 0x00A0
	OpLOADIO  Op = 0x00A1
	OpSHOWIO  Op = 0x00A2
	OpCLRIO   Op = 0x00A3
	OpRESETIO Op = 0x00A4
)

// Sized arithmetic opcodes.
const (
	OpADD1  Op = 0x0100
	OpSUB1  Op = 0x0101
	OpMUL1  Op = 0x0102
	OpMULS1 Op = 0x0103
	OpDIV1  Op = 0x0104
	OpMOD1  Op = 0x0105
	OpADDV1 Op = 0x0110
	OpSUBV1 Op = 0x0111

	OpADD2  Op = 0x0200
	OpSUB2  Op = 0x0201
	OpMUL2  Op = 0x0202
	OpMULS2 Op = 0x0203
	OpDIV2  Op = 0x0204
	OpMOD2  Op = 0x0205
	OpADDV2 Op = 0x0210
	OpSUBV2 Op = 0x0211

	OpADD4  Op = 0x0300
	OpSUB4  Op = 0x0301
	OpMUL4  Op = 0x0302
	OpMULS4 Op = 0x0303
	OpDIV4  Op = 0x0304
	OpMOD4  Op = 0x0305
	OpADDV4 Op = 0x0310
	OpSUBV4 Op = 0x0311

	OpADD8  Op = 0x0312
	OpSUB8  Op = 0x0313
	OpMUL8  Op = 0x0314
	OpMULS8 Op = 0x0315
	OpDIV8  Op = 0x0316
	OpADDV8 Op = 0x0317
	OpSUBV8 Op = 0x0318
	OpMOD8  Op = 0x0319
)

// Sized move, load and store opcodes.
const (
	OpMOV1  Op = 0x0400
	OpMOV2  Op = 0x0401
	OpMOV4  Op = 0x0402
	OpMOV8  Op = 0x0403
	OpMOVV1 Op = 0x0410
	OpMOVV2 Op = 0x0411
	OpMOVV4 Op = 0x0412
	OpMOVV8 Op = 0x0413

	OpLOAD1  Op = 0x0500
	OpLOAD2  Op = 0x0501
	OpLOAD4  Op = 0x0502
	OpLOAD8  Op = 0x0503
	OpLOADR1 Op = 0x0510
	OpLOADR2 Op = 0x0511
	OpLOADR4 Op = 0x0512
	OpLOADR8 Op = 0x0513

	OpSTORE1  Op = 0x0600
	OpSTORE2  Op = 0x0601
	OpSTORE4  Op = 0x0602
	OpSTORE8  Op = 0x0603
	OpSTORER1 Op = 0x0610
	OpSTORER2 Op = 0x0611
	OpSTORER4 Op = 0x0612
	OpSTORER8 Op = 0x0613
)

// Floating-point opcodes. The 4 suffix selects binary32, 8 selects binary64.
const (
	OpFADD4 Op = 0x0700
	OpFSUB4 Op = 0x0701
	OpFMUL4 Op = 0x0702
	OpFDIV4 Op = 0x0703
	OpFADD8 Op = 0x0710
	OpFSUB8 Op = 0x0711
	OpFMUL8 Op = 0x0712
	OpFDIV8 Op = 0x0713

	OpFSQRT4    Op = 0x0720
	OpFSQRT8    Op = 0x0721
	OpFSIN4     Op = 0x0722
	OpFCOS4     Op = 0x0723
	OpFSIN8     Op = 0x0724
	OpFCOS8     Op = 0x0725
	OpINTFLOAT4 Op = 0x0726
	OpINTFLOAT8 Op = 0x0727

	OpCVTF2I8 Op = 0x0730
	OpCVTI2F8 Op = 0x0731
	OpCVTF2I4 Op = 0x0732
	OpCVTI2F4 Op = 0x0733
)

// Stack and sized compare opcodes.
const (
	OpPOP1  Op = 0x0810
	OpPOP2  Op = 0x0811
	OpPOP4  Op = 0x0812
	OpPOP8  Op = 0x0813
	OpPUSH1 Op = 0x0820
	OpPUSH2 Op = 0x0821
	OpPUSH4 Op = 0x0822
	OpPUSH8 Op = 0x0823

	OpCMP1  Op = 0x0830
	OpCMP2  Op = 0x0831
	OpCMP4  Op = 0x0832
	OpCMP8  Op = 0x0833
	OpCMPV1 Op = 0x0840
	OpCMPV2 Op = 0x0841
	OpCMPV4 Op = 0x0842
	OpCMPV8 Op = 0x0843
)

// String returns the mnemonic of the opcode, or its hex value when the opcode
// is not part of the instruction set.
func (o Op) String() string {
	if info, ok := opTable[o]; ok {
		return info.Mnemonic
	}
	return fmt.Sprintf("Op(0x%04X)", uint16(o))
}

// Format represents an instruction operand format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatOP             // no operands
	FormatR              // one register
	FormatRR             // destination and source registers
	FormatRI             // register plus a trailing immediate word
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatOP:
		return "OP"
	case FormatR:
		return "R"
	case FormatRR:
		return "RR"
	case FormatRI:
		return "RI"
	default:
		return "UNKNOWN"
	}
}

// Words returns how many 64-bit words an instruction of this format occupies.
func (f Format) Words() int {
	if f == FormatRI {
		return 2
	}
	return 1
}

// Class groups opcodes that share an execution resource. The timing model
// assigns latencies per class.
type Class uint8

// Instruction classes.
const (
	ClassControl Class = iota
	ClassALU
	ClassMultiply
	ClassDivide
	ClassLogic
	ClassMove
	ClassLoad
	ClassStore
	ClassCompare
	ClassFlag
	ClassBranch
	ClassCall
	ClassStack
	ClassIO
	ClassFPU
	ClassFPUDivide
	ClassFPUComplex
	ClassConvert
)

var classNames = [...]string{
	ClassControl:    "control",
	ClassALU:        "alu",
	ClassMultiply:   "multiply",
	ClassDivide:     "divide",
	ClassLogic:      "logic",
	ClassMove:       "move",
	ClassLoad:       "load",
	ClassStore:      "store",
	ClassCompare:    "compare",
	ClassFlag:       "flag",
	ClassBranch:     "branch",
	ClassCall:       "call",
	ClassStack:      "stack",
	ClassIO:         "io",
	ClassFPU:        "fpu",
	ClassFPUDivide:  "fpu-divide",
	ClassFPUComplex: "fpu-complex",
	ClassConvert:    "convert",
}

// String returns the class name used in timing configuration files.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// Classes returns every instruction class in declaration order.
func Classes() []Class {
	cs := make([]Class, len(classNames))
	for i := range cs {
		cs[i] = Class(i)
	}
	return cs
}

// Instruction represents a decoded vm64 instruction.
type Instruction struct {
	// Op is the opcode.
	Op Op

	// Format is the operand format of Op.
	Format Format

	// Rd is the destination register (R, RR and RI formats).
	Rd uint8

	// Rs is the source register (RR format).
	Rs uint8

	// Imm is the immediate word (RI format). The decoder leaves it zero;
	// the CPU fills it in after fetching the trailing word.
	Imm uint64

	// Word is the raw instruction word.
	Word uint64
}

// Class returns the instruction class of the decoded opcode.
func (i *Instruction) Class() Class {
	return opTable[i.Op].Class
}

// Words returns the number of 64-bit words the instruction occupies.
func (i *Instruction) Words() int {
	return i.Format.Words()
}

// String disassembles the instruction.
func (i *Instruction) String() string {
	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%s R%d", i.Op, i.Rd)
	case FormatRR:
		return fmt.Sprintf("%s R%d, R%d", i.Op, i.Rd, i.Rs)
	case FormatRI:
		if i.Op.IsJump() {
			return fmt.Sprintf("%s 0x%X", i.Op, i.Imm)
		}
		return fmt.Sprintf("%s R%d, 0x%X", i.Op, i.Rd, i.Imm)
	default:
		return i.Op.String()
	}
}
