package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should mask sized reads", func() {
		regFile.WriteReg(3, 0x1122334455667788)
		Expect(regFile.Read(3, emu.Size1)).To(Equal(uint64(0x88)))
		Expect(regFile.Read(3, emu.Size2)).To(Equal(uint64(0x7788)))
		Expect(regFile.Read(3, emu.Size4)).To(Equal(uint64(0x55667788)))
		Expect(regFile.Read(3, emu.Size8)).To(Equal(uint64(0x1122334455667788)))
	})

	It("should replace the whole register on a sized write", func() {
		regFile.WriteReg(2, 0xFFFFFFFFFFFFFFFF)
		regFile.Write(2, 0x1234, emu.Size1)
		Expect(regFile.ReadReg(2)).To(Equal(uint64(0x34)))

		regFile.WriteReg(2, 0xFFFFFFFFFFFFFFFF)
		regFile.Write(2, 0xAABBCCDD, emu.Size2)
		Expect(regFile.ReadReg(2)).To(Equal(uint64(0xCCDD)))
	})

	It("should alias SP to R15", func() {
		regFile.SetSP(0x1C000)
		Expect(regFile.R[emu.SPReg]).To(Equal(uint64(0x1C000)))
		regFile.WriteReg(15, 0x100)
		Expect(regFile.SP()).To(Equal(uint64(0x100)))
	})

	It("should ignore registers outside R0-R15", func() {
		regFile.WriteReg(16, 5)
		Expect(regFile.ReadReg(16)).To(BeZero())
	})

	Describe("Flags", func() {
		It("should compute Z and N at the given width", func() {
			f := &emu.Flags{C: true, V: true}
			f.SetZN(0x80, emu.Size1)
			Expect(f.N).To(BeTrue())
			Expect(f.Z).To(BeFalse())
			Expect(f.C).To(BeTrue())

			f.SetZN(0x100, emu.Size1)
			Expect(f.Z).To(BeTrue())
			Expect(f.N).To(BeFalse())
		})

		It("should format as bits", func() {
			Expect(emu.Flags{Z: true, V: true}.String()).To(Equal("Z=1 N=0 C=0 V=1"))
		})
	})

	Describe("Size", func() {
		It("should sign extend within the width", func() {
			Expect(emu.Size1.SignExtend(0xFF)).To(Equal(int64(-1)))
			Expect(emu.Size2.SignExtend(0x7FFF)).To(Equal(int64(0x7FFF)))
			Expect(emu.Size4.SignExtend(0x80000000)).To(Equal(int64(-0x80000000)))
			Expect(emu.Size8.Mask()).To(Equal(^uint64(0)))
		})

		It("should only accept 1, 2, 4 and 8", func() {
			Expect(emu.Size(3).Valid()).To(BeFalse())
			for _, s := range emu.Sizes {
				Expect(s.Valid()).To(BeTrue())
			}
		})
	})
})
