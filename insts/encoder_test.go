package insts_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/insts"
)

var _ = Describe("Encoder", func() {
	It("should place fields where the decoder reads them", func() {
		decoder := insts.NewDecoder()

		inst, err := decoder.Decode(insts.EncodeRR(insts.OpSUB4, 7, 9))
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpSUB4))
		Expect(inst.Rd).To(Equal(uint8(7)))
		Expect(inst.Rs).To(Equal(uint8(9)))

		inst, err = decoder.Decode(insts.EncodeR(insts.OpPUSH8, 15))
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Rd).To(Equal(uint8(15)))
	})

	It("should encode RI as an instruction word plus the immediate", func() {
		words := insts.EncodeRI(insts.OpMOVV8, 2, 0xDEADBEEF)
		Expect(words).To(Equal([]uint64{0x0413_2000_0000_0000, 0xDEADBEEF}))
	})

	It("should choose the layout from the opcode format", func() {
		words, err := insts.Encode(insts.Instruction{Op: insts.OpJEQ, Imm: 0x40})
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(HaveLen(2))

		_, err = insts.Encode(insts.Instruction{Op: 0x7777})
		Expect(err).To(MatchError(insts.ErrUnknownOpcode))
	})

	It("should lay words out little-endian", func() {
		buf := insts.WordsToBytes([]uint64{0x0102030405060708})
		Expect(buf).To(Equal([]byte{8, 7, 6, 5, 4, 3, 2, 1}))
	})

	Describe("Builder", func() {
		It("should resolve labels against the load base", func() {
			b := insts.NewBuilder().
				RI(insts.OpMOVV8, 1, 3).
				Label("loop").
				R(insts.OpDEC, 1).
				To(insts.OpJNE, "loop").
				Op(insts.OpHALT)

			words, err := b.Words(0x1000)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(HaveLen(6))
			Expect(words[4]).To(Equal(uint64(0x1010)))

			buf := b.MustBytes(0x1000)
			Expect(binary.LittleEndian.Uint64(buf[32:])).To(Equal(uint64(0x1010)))
		})

		It("should report undefined labels", func() {
			_, err := insts.NewBuilder().To(insts.OpJMP, "nowhere").Words(0)
			Expect(err).To(MatchError(ContainSubstring("nowhere")))
		})

		It("should report duplicate labels", func() {
			_, err := insts.NewBuilder().Label("a").Op(insts.OpNOP).Label("a").Words(0)
			Expect(err).To(MatchError(ContainSubstring("duplicate")))
		})
	})

	Describe("Instruction.String", func() {
		It("should disassemble each format", func() {
			Expect((&insts.Instruction{Op: insts.OpHALT, Format: insts.FormatOP}).String()).To(Equal("HALT"))
			Expect((&insts.Instruction{Op: insts.OpINC, Format: insts.FormatR, Rd: 3}).String()).To(Equal("INC R3"))
			Expect((&insts.Instruction{Op: insts.OpADD, Format: insts.FormatRR, Rd: 1, Rs: 2}).String()).To(Equal("ADD R1, R2"))
			Expect((&insts.Instruction{Op: insts.OpMOVV8, Format: insts.FormatRI, Rd: 1, Imm: 255}).String()).To(Equal("MOVV8 R1, 0xFF"))
			Expect((&insts.Instruction{Op: insts.OpCALL, Format: insts.FormatRI, Imm: 0x40}).String()).To(Equal("CALL 0x40"))
		})
	})
})
