package emu_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
)

var _ = Describe("CPU", func() {
	Describe("end to end", func() {
		It("should sum 5..1 into R2 and publish it on I/O port 0x30", func() {
			var out bytes.Buffer
			ioSys := emu.NewIOSystem()
			latch := emu.NewLatch(0x30, &out)
			ioSys.Register(0x30, latch)

			b := insts.NewBuilder().
				RI(insts.OpLOADV, 1, 5).
				R(insts.OpCLEAR, 2).
				Label("loop").
				RR(insts.OpADD, 2, 1).
				R(insts.OpDEC, 1).
				RI(insts.OpCMPV, 1, 0).
				To(insts.OpJNE, "loop").
				RI(insts.OpSVIO, 2, 0x30).
				RI(insts.OpSHOWIO, 0, 0x30).
				Op(insts.OpHALT)
			cpu, _ := loadCPU(b, ioSys)

			Expect(cpu.Run(1000)).To(Succeed())

			Expect(cpu.Running()).To(BeFalse())
			Expect(cpu.RegFile().ReadReg(2)).To(Equal(uint64(15)))
			Expect(latch.Read()).To(Equal(uint64(15)))
			Expect(out.String()).To(Equal("[IO 0x30] = 15\n"))
		})
	})

	Describe("single stepping", func() {
		It("should expose fetch, decode and execute separately", func() {
			b := insts.NewBuilder().RI(insts.OpMOVV8, 4, 0xABCD).Op(insts.OpHALT)
			cpu, _ := loadCPU(b, nil)

			word, err := cpu.Fetch()
			Expect(err).NotTo(HaveOccurred())
			Expect(cpu.PC()).To(Equal(uint64(8)))

			inst, err := cpu.Decode(word)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Imm).To(Equal(uint64(0xABCD)))
			Expect(cpu.PC()).To(Equal(uint64(16)))

			Expect(cpu.Execute(inst)).To(Succeed())
			Expect(cpu.RegFile().ReadReg(4)).To(Equal(uint64(0xABCD)))
		})

		It("should count cycles and remember the last instruction", func() {
			b := insts.NewBuilder().Op(insts.OpNOP).Op(insts.OpNOP).Op(insts.OpHALT)
			cpu, _ := loadCPU(b, nil)

			Expect(cpu.Tick()).To(Succeed())
			Expect(cpu.Cycles()).To(Equal(uint64(1)))
			Expect(cpu.LastInstruction().Op).To(Equal(insts.OpNOP))

			Expect(cpu.Run(0)).To(Succeed())
			Expect(cpu.Cycles()).To(Equal(uint64(3)))
		})

		It("should refuse to tick once halted", func() {
			cpu, _ := loadCPU(insts.NewBuilder().Op(insts.OpHALT), nil)
			Expect(cpu.Tick()).To(Succeed())
			Expect(cpu.Tick()).To(MatchError(emu.ErrHalted))
			Expect(cpu.Run(0)).To(Succeed())
		})

		It("should continue after Resume", func() {
			b := insts.NewBuilder().Op(insts.OpHALT).RI(insts.OpMOVV1, 0, 7).Op(insts.OpHALT)
			cpu, _ := loadCPU(b, nil)
			Expect(cpu.Run(0)).To(Succeed())

			cpu.Resume()
			Expect(cpu.Run(0)).To(Succeed())
			Expect(cpu.RegFile().ReadReg(0)).To(Equal(uint64(7)))
		})

		It("should stop a run when Stop is called", func() {
			b := insts.NewBuilder().Label("top").To(insts.OpJMP, "top")
			cpu, _ := loadCPU(b, nil)
			Expect(cpu.Tick()).To(Succeed())
			cpu.Stop()
			Expect(cpu.Run(0)).To(Succeed())
			Expect(cpu.Cycles()).To(Equal(uint64(1)))
		})
	})

	Describe("fatal errors", func() {
		It("should fail a runaway program at the cycle ceiling", func() {
			b := insts.NewBuilder().Label("top").To(insts.OpJMP, "top")
			cpu, _ := loadCPU(b, nil)

			err := cpu.Run(50)
			Expect(err).To(MatchError(emu.ErrCycleLimit))
			Expect(cpu.Cycles()).To(Equal(uint64(50)))
		})

		It("should use the configured ceiling for Run(0)", func() {
			b := insts.NewBuilder().Label("top").To(insts.OpJMP, "top")
			cpu, _ := loadCPU(b, nil, emu.WithMaxCycles(10))
			Expect(cpu.Run(0)).To(MatchError(emu.ErrCycleLimit))
			Expect(cpu.Cycles()).To(Equal(uint64(10)))
		})

		It("should report the PC and opcode of an unknown instruction", func() {
			b := insts.NewBuilder().Op(insts.OpNOP).Data(0xBEEF_0000_0000_0000)
			cpu, _ := loadCPU(b, nil)

			err := cpu.Run(0)
			Expect(err).To(MatchError(insts.ErrUnknownOpcode))

			var execErr *emu.ExecError
			Expect(errors.As(err, &execErr)).To(BeTrue())
			Expect(execErr.PC).To(Equal(uint64(8)))
			Expect(execErr.Op).To(Equal(insts.Op(0xBEEF)))
			Expect(err.Error()).To(ContainSubstring("PC=0x8"))
		})

		It("should report the address of an out-of-range load", func() {
			b := insts.NewBuilder().RI(insts.OpLOAD8, 0, 0x20000)
			cpu, _ := loadCPU(b, nil)

			err := cpu.Tick()
			var execErr *emu.ExecError
			Expect(errors.As(err, &execErr)).To(BeTrue())
			Expect(execErr.Op).To(Equal(insts.OpLOAD8))
			Expect(execErr.HasAddr).To(BeTrue())
			Expect(execErr.Addr).To(Equal(uint64(0x20000)))
			Expect(errors.Is(err, emu.ErrAddressOutOfRange)).To(BeTrue())
		})

		It("should fail when PC runs off the end of memory", func() {
			cpu, _ := loadCPU(insts.NewBuilder(), nil, emu.WithEntryPoint(testMemSize-4))
			Expect(cpu.Tick()).To(MatchError(emu.ErrAddressOutOfRange))
		})

		It("should fail when the immediate word is past the end of memory", func() {
			mem := emu.NewMemory(8)
			Expect(mem.Write(0, insts.EncodeR(insts.OpMOVV8, 0), emu.Size8)).To(Succeed())
			cpu := emu.NewCPU(mem, nil)
			Expect(cpu.Tick()).To(MatchError(emu.ErrAddressOutOfRange))
		})
	})

	Describe("trace and state", func() {
		It("should write one line per instruction", func() {
			var trace bytes.Buffer
			b := insts.NewBuilder().RI(insts.OpMOVV8, 1, 0x10).Op(insts.OpHALT)
			cpu, _ := loadCPU(b, nil, emu.WithTracer(&trace))
			Expect(cpu.Run(0)).To(Succeed())

			Expect(trace.String()).To(Equal(
				"00000000  MOVV8 R1, 0x10           Z=0 N=0 C=0 V=0\n" +
					"00000010  HALT                     Z=0 N=0 C=0 V=0\n"))
		})

		It("should name symbol addresses in the trace", func() {
			var trace bytes.Buffer
			b := insts.NewBuilder().
				RI(insts.OpMOVV8, 1, 0x208).
				RI(insts.OpSTORE8, 1, 0x208).
				Op(insts.OpHALT)
			cpu, mem := loadCPU(b, nil, emu.WithTracer(&trace))
			mem.RegisterSymbol("table", 0x200, 0x40)
			Expect(cpu.Run(0)).To(Succeed())

			lines := strings.Split(trace.String(), "\n")
			Expect(lines[0]).NotTo(ContainSubstring("<table"))
			Expect(lines[1]).To(ContainSubstring("STORE8 R1, 0x208 <table+0x8>"))
		})

		It("should snapshot the architectural state", func() {
			cpu, _ := loadCPU(insts.NewBuilder().Op(insts.OpHALT), nil,
				emu.WithEntryPoint(0), emu.WithStackPointer(0x3000))
			cpu.RegFile().WriteReg(1, ^uint64(0))
			Expect(cpu.Run(0)).To(Succeed())

			s := cpu.State()
			Expect(s.SP).To(Equal(uint64(0x3000)))
			Expect(s.Registers[1]).To(Equal(^uint64(0)))
			Expect(s.Running).To(BeFalse())
			Expect(s.String()).To(ContainSubstring("R01: 0xFFFFFFFFFFFFFFFF (-1)"))
		})

		It("should reset registers but keep memory", func() {
			b := insts.NewBuilder().RI(insts.OpMOVV8, 1, 3).Op(insts.OpHALT)
			cpu, mem := loadCPU(b, nil)
			Expect(cpu.Run(0)).To(Succeed())

			cpu.Reset(0, 0x1000)
			Expect(cpu.RegFile().ReadReg(1)).To(BeZero())
			Expect(cpu.SP()).To(Equal(uint64(0x1000)))
			Expect(cpu.Running()).To(BeTrue())
			Expect(mem.Read(0, emu.Size8)).To(Equal(insts.EncodeR(insts.OpMOVV8, 1)))
		})
	})
})
