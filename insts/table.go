// Package insts provides vm64 instruction definitions, decoding and encoding.
package insts

import "sort"

// Info describes the static properties of an opcode.
type Info struct {
	Mnemonic string
	Format   Format
	Class    Class
}

var opTable = map[Op]Info{
	OpHALT: {"HALT", FormatOP, ClassControl},
	OpNOP:  {"NOP", FormatOP, ClassControl},

	OpADD:  {"ADD", FormatRR, ClassALU},
	OpSUB:  {"SUB", FormatRR, ClassALU},
	OpMULS: {"MULS", FormatRR, ClassMultiply},
	OpMUL:  {"MUL", FormatRR, ClassMultiply},
	OpDIV:  {"DIV", FormatRR, ClassDivide},
	OpMOD:  {"MOD", FormatRR, ClassDivide},
	OpADDV: {"ADDV", FormatRI, ClassALU},
	OpSUBV: {"SUBV", FormatRI, ClassALU},
	OpINC:  {"INC", FormatR, ClassALU},
	OpDEC:  {"DEC", FormatR, ClassALU},

	OpNOT:  {"NOT", FormatR, ClassLogic},
	OpAND:  {"AND", FormatRR, ClassLogic},
	OpANDV: {"ANDV", FormatRI, ClassLogic},
	OpOR:   {"OR", FormatRR, ClassLogic},
	OpORV:  {"ORV", FormatRI, ClassLogic},
	OpXOR:  {"XOR", FormatRR, ClassLogic},
	OpXORV: {"XORV", FormatRI, ClassLogic},
	OpSHL:  {"SHL", FormatR, ClassLogic},
	OpSAR:  {"SAR", FormatR, ClassLogic},
	OpSHLU: {"SHLU", FormatR, ClassLogic},
	OpSHR:  {"SHR", FormatR, ClassLogic},

	OpLOAD:  {"LOAD", FormatRI, ClassLoad},
	OpLOADV: {"LOADV", FormatRI, ClassMove},
	OpLOADB: {"LOADB", FormatRR, ClassLoad},
	OpSTORE: {"STORE", FormatRI, ClassStore},
	OpCLEAR: {"CLEAR", FormatR, ClassMove},

	OpCMP:  {"CMP", FormatRR, ClassCompare},
	OpCMPV: {"CMPV", FormatRI, ClassCompare},
	OpCLRZ: {"CLRZ", FormatOP, ClassFlag},
	OpSETZ: {"SETZ", FormatOP, ClassFlag},
	OpCLRN: {"CLRN", FormatOP, ClassFlag},
	OpSETN: {"SETN", FormatOP, ClassFlag},
	OpCLRC: {"CLRC", FormatOP, ClassFlag},
	OpSETC: {"SETC", FormatOP, ClassFlag},
	OpCLRV: {"CLRV", FormatOP, ClassFlag},
	OpSETV: {"SETV", FormatOP, ClassFlag},

	OpJMP:  {"JMP", FormatRI, ClassBranch},
	OpJEQ:  {"JEQ", FormatRI, ClassBranch},
	OpJNE:  {"JNE", FormatRI, ClassBranch},
	OpJMI:  {"JMI", FormatRI, ClassBranch},
	OpJPL:  {"JPL", FormatRI, ClassBranch},
	OpJCS:  {"JCS", FormatRI, ClassBranch},
	OpJCC:  {"JCC", FormatRI, ClassBranch},
	OpJLT:  {"JLT", FormatRI, ClassBranch},
	OpJGE:  {"JGE", FormatRI, ClassBranch},
	OpCALL: {"CALL", FormatRI, ClassCall},
	OpRET:  {"RET", FormatOP, ClassCall},

	OpSVIO:    {"SVIO", FormatRI, ClassIO},
	OpLOADIO:  {"LOADIO", FormatRI, ClassIO},
	OpSHOWIO:  {"SHOWIO", FormatRI, ClassIO},
	OpCLRIO:   {"CLRIO", FormatOP, ClassIO},
	OpRESETIO: {"RESETIO", FormatOP, ClassIO},

	OpADD1: {"ADD1", FormatRR, ClassALU}, OpSUB1: {"SUB1", FormatRR, ClassALU},
	OpMUL1: {"MUL1", FormatRR, ClassMultiply}, OpMULS1: {"MULS1", FormatRR, ClassMultiply},
	OpDIV1: {"DIV1", FormatRR, ClassDivide}, OpMOD1: {"MOD1", FormatRR, ClassDivide},
	OpADDV1: {"ADDV1", FormatRI, ClassALU}, OpSUBV1: {"SUBV1", FormatRI, ClassALU},

	OpADD2: {"ADD2", FormatRR, ClassALU}, OpSUB2: {"SUB2", FormatRR, ClassALU},
	OpMUL2: {"MUL2", FormatRR, ClassMultiply}, OpMULS2: {"MULS2", FormatRR, ClassMultiply},
	OpDIV2: {"DIV2", FormatRR, ClassDivide}, OpMOD2: {"MOD2", FormatRR, ClassDivide},
	OpADDV2: {"ADDV2", FormatRI, ClassALU}, OpSUBV2: {"SUBV2", FormatRI, ClassALU},

	OpADD4: {"ADD4", FormatRR, ClassALU}, OpSUB4: {"SUB4", FormatRR, ClassALU},
	OpMUL4: {"MUL4", FormatRR, ClassMultiply}, OpMULS4: {"MULS4", FormatRR, ClassMultiply},
	OpDIV4: {"DIV4", FormatRR, ClassDivide}, OpMOD4: {"MOD4", FormatRR, ClassDivide},
	OpADDV4: {"ADDV4", FormatRI, ClassALU}, OpSUBV4: {"SUBV4", FormatRI, ClassALU},

	OpADD8: {"ADD8", FormatRR, ClassALU}, OpSUB8: {"SUB8", FormatRR, ClassALU},
	OpMUL8: {"MUL8", FormatRR, ClassMultiply}, OpMULS8: {"MULS8", FormatRR, ClassMultiply},
	OpDIV8: {"DIV8", FormatRR, ClassDivide}, OpMOD8: {"MOD8", FormatRR, ClassDivide},
	OpADDV8: {"ADDV8", FormatRI, ClassALU}, OpSUBV8: {"SUBV8", FormatRI, ClassALU},

	OpMOV1: {"MOV1", FormatRR, ClassMove}, OpMOV2: {"MOV2", FormatRR, ClassMove},
	OpMOV4: {"MOV4", FormatRR, ClassMove}, OpMOV8: {"MOV8", FormatRR, ClassMove},
	OpMOVV1: {"MOVV1", FormatRI, ClassMove}, OpMOVV2: {"MOVV2", FormatRI, ClassMove},
	OpMOVV4: {"MOVV4", FormatRI, ClassMove}, OpMOVV8: {"MOVV8", FormatRI, ClassMove},

	OpLOAD1: {"LOAD1", FormatRI, ClassLoad}, OpLOAD2: {"LOAD2", FormatRI, ClassLoad},
	OpLOAD4: {"LOAD4", FormatRI, ClassLoad}, OpLOAD8: {"LOAD8", FormatRI, ClassLoad},
	OpLOADR1: {"LOADR1", FormatRR, ClassLoad}, OpLOADR2: {"LOADR2", FormatRR, ClassLoad},
	OpLOADR4: {"LOADR4", FormatRR, ClassLoad}, OpLOADR8: {"LOADR8", FormatRR, ClassLoad},

	OpSTORE1: {"STORE1", FormatRI, ClassStore}, OpSTORE2: {"STORE2", FormatRI, ClassStore},
	OpSTORE4: {"STORE4", FormatRI, ClassStore}, OpSTORE8: {"STORE8", FormatRI, ClassStore},
	OpSTORER1: {"STORER1", FormatRR, ClassStore}, OpSTORER2: {"STORER2", FormatRR, ClassStore},
	OpSTORER4: {"STORER4", FormatRR, ClassStore}, OpSTORER8: {"STORER8", FormatRR, ClassStore},

	OpFADD4: {"FADD4", FormatRR, ClassFPU}, OpFSUB4: {"FSUB4", FormatRR, ClassFPU},
	OpFMUL4: {"FMUL4", FormatRR, ClassFPU}, OpFDIV4: {"FDIV4", FormatRR, ClassFPUDivide},
	OpFADD8: {"FADD8", FormatRR, ClassFPU}, OpFSUB8: {"FSUB8", FormatRR, ClassFPU},
	OpFMUL8: {"FMUL8", FormatRR, ClassFPU}, OpFDIV8: {"FDIV8", FormatRR, ClassFPUDivide},

	OpFSQRT4: {"FSQRT4", FormatR, ClassFPUComplex}, OpFSQRT8: {"FSQRT8", FormatR, ClassFPUComplex},
	OpFSIN4: {"FSIN4", FormatR, ClassFPUComplex}, OpFCOS4: {"FCOS4", FormatR, ClassFPUComplex},
	OpFSIN8: {"FSIN8", FormatR, ClassFPUComplex}, OpFCOS8: {"FCOS8", FormatR, ClassFPUComplex},
	OpINTFLOAT4: {"INTFLOAT4", FormatR, ClassConvert}, OpINTFLOAT8: {"INTFLOAT8", FormatR, ClassConvert},

	OpCVTF2I8: {"CVTF2I8", FormatRR, ClassConvert}, OpCVTI2F8: {"CVTI2F8", FormatRR, ClassConvert},
	OpCVTF2I4: {"CVTF2I4", FormatRR, ClassConvert}, OpCVTI2F4: {"CVTI2F4", FormatRR, ClassConvert},

	OpPOP1: {"POP1", FormatR, ClassStack}, OpPOP2: {"POP2", FormatR, ClassStack},
	OpPOP4: {"POP4", FormatR, ClassStack}, OpPOP8: {"POP8", FormatR, ClassStack},
	OpPUSH1: {"PUSH1", FormatR, ClassStack}, OpPUSH2: {"PUSH2", FormatR, ClassStack},
	OpPUSH4: {"PUSH4", FormatR, ClassStack}, OpPUSH8: {"PUSH8", FormatR, ClassStack},

	OpCMP1: {"CMP1", FormatRR, ClassCompare}, OpCMP2: {"CMP2", FormatRR, ClassCompare},
	OpCMP4: {"CMP4", FormatRR, ClassCompare}, OpCMP8: {"CMP8", FormatRR, ClassCompare},
	OpCMPV1: {"CMPV1", FormatRI, ClassCompare}, OpCMPV2: {"CMPV2", FormatRI, ClassCompare},
	OpCMPV4: {"CMPV4", FormatRI, ClassCompare}, OpCMPV8: {"CMPV8", FormatRI, ClassCompare},
}

var mnemonics = func() map[string]Op {
	m := make(map[string]Op, len(opTable))
	for op, info := range opTable {
		m[info.Mnemonic] = op
	}
	return m
}()

// Lookup returns the static properties of an opcode.
func Lookup(op Op) (Info, bool) {
	info, ok := opTable[op]
	return info, ok
}

// ParseMnemonic returns the opcode with the given mnemonic.
func ParseMnemonic(name string) (Op, bool) {
	op, ok := mnemonics[name]
	return op, ok
}

// Ops returns every defined opcode in ascending order.
func Ops() []Op {
	ops := make([]Op, 0, len(opTable))
	for op := range opTable {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// IsJump reports whether the opcode is an absolute jump (conditional or not).
func (o Op) IsJump() bool {
	return o >= OpJMP && o <= OpCALL
}
