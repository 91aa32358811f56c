// Package insts provides vm64 instruction definitions, decoding and encoding.
//
// Every instruction is one little-endian 64-bit word whose upper 16 bits hold
// the opcode. The opcode selects one of four operand formats:
//   - OP: no operands
//   - R: one register in bits [47:44]
//   - RR: destination in bits [7:4], source in bits [3:0]
//   - RI: one register in bits [47:44] followed by a second 64-bit word
//     holding the immediate value or absolute address
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x0010_0000_0000_0012) // ADD R1, R2
//	fmt.Printf("Op: %v, Rd: %d, Rs: %d\n", inst.Op, inst.Rd, inst.Rs)
package insts
