package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
)

var _ = Describe("Stack", func() {
	pushOps := map[emu.Size]insts.Op{
		emu.Size1: insts.OpPUSH1, emu.Size2: insts.OpPUSH2,
		emu.Size4: insts.OpPUSH4, emu.Size8: insts.OpPUSH8,
	}
	popOps := map[emu.Size]insts.Op{
		emu.Size1: insts.OpPOP1, emu.Size2: insts.OpPOP2,
		emu.Size4: insts.OpPOP4, emu.Size8: insts.OpPOP8,
	}

	DescribeTable("PUSH then POP into another register",
		func(size emu.Size) {
			b := insts.NewBuilder().
				R(pushOps[size], 1).
				R(popOps[size], 2).
				Op(insts.OpHALT)
			cpu, mem := loadCPU(b, nil, emu.WithStackPointer(0x1000))
			cpu.RegFile().WriteReg(1, 0x8877665544332211)

			Expect(cpu.Tick()).To(Succeed())
			Expect(cpu.SP()).To(Equal(0x1000 + uint64(size)))
			Expect(mem.Read(0x1000, size)).To(Equal(0x8877665544332211 & size.Mask()))

			Expect(cpu.Run(0)).To(Succeed())
			Expect(cpu.RegFile().ReadReg(2)).To(Equal(0x8877665544332211 & size.Mask()))
			Expect(cpu.SP()).To(Equal(uint64(0x1000)))
		},
		Entry("1 byte", emu.Size1),
		Entry("2 bytes", emu.Size2),
		Entry("4 bytes", emu.Size4),
		Entry("8 bytes", emu.Size8),
	)

	It("should return from CALL to the word after the immediate", func() {
		b := insts.NewBuilder().
			To(insts.OpCALL, "fn").
			Label("after").
			Op(insts.OpHALT).
			Label("fn").
			RI(insts.OpMOVV8, 3, 99).
			Op(insts.OpRET)
		cpu, mem := loadCPU(b, nil, emu.WithStackPointer(0x2000))

		Expect(cpu.Tick()).To(Succeed())
		fn, _ := b.Addr("fn", 0)
		Expect(cpu.PC()).To(Equal(fn))
		Expect(cpu.SP()).To(Equal(uint64(0x2008)))
		Expect(mem.Read(0x2000, emu.Size8)).To(Equal(uint64(16)))

		Expect(cpu.Tick()).To(Succeed())
		Expect(cpu.Tick()).To(Succeed())
		after, _ := b.Addr("after", 0)
		Expect(cpu.PC()).To(Equal(after))
		Expect(cpu.SP()).To(Equal(uint64(0x2000)))

		Expect(cpu.Run(0)).To(Succeed())
		Expect(cpu.RegFile().ReadReg(3)).To(Equal(uint64(99)))
	})

	It("should fail on overflow past the end of memory", func() {
		cpu, _ := loadCPU(insts.NewBuilder().R(insts.OpPUSH8, 0), nil,
			emu.WithStackPointer(testMemSize-4))

		err := cpu.Tick()
		Expect(errors.Is(err, emu.ErrStackOverflow)).To(BeTrue())

		var execErr *emu.ExecError
		Expect(errors.As(err, &execErr)).To(BeTrue())
		Expect(execErr.Op).To(Equal(insts.OpPUSH8))
		Expect(execErr.Addr).To(Equal(uint64(testMemSize - 4)))
		Expect(cpu.SP()).To(Equal(uint64(testMemSize - 4)))
	})

	It("should fail on overflow past a configured limit", func() {
		cpu, _ := loadCPU(insts.NewBuilder().R(insts.OpPUSH4, 0).R(insts.OpPUSH4, 0), nil,
			emu.WithStackPointer(0x1000), emu.WithStackBounds(0x1000, 0x1006))

		Expect(cpu.Tick()).To(Succeed())
		Expect(cpu.Tick()).To(MatchError(emu.ErrStackOverflow))
	})

	It("should fail on underflow", func() {
		cpu, _ := loadCPU(insts.NewBuilder().R(insts.OpPOP8, 0), nil,
			emu.WithStackPointer(0x1004), emu.WithStackBounds(0x1000, 0))
		Expect(cpu.Tick()).To(MatchError(emu.ErrStackUnderflow))

		cpu, _ = loadCPU(insts.NewBuilder().Op(insts.OpRET), nil, emu.WithStackPointer(4))
		Expect(cpu.Tick()).To(MatchError(emu.ErrStackUnderflow))
	})

	It("should set Z and N from the popped value", func() {
		b := insts.NewBuilder().R(insts.OpPUSH1, 1).R(insts.OpPOP1, 2)
		cpu, _ := loadCPU(b, nil, emu.WithStackPointer(0x1000))
		cpu.RegFile().WriteReg(1, 0x80)

		Expect(cpu.Tick()).To(Succeed())
		Expect(cpu.Tick()).To(Succeed())
		Expect(cpu.Flags().N).To(BeTrue())
		Expect(cpu.Flags().Z).To(BeFalse())
	})
})
