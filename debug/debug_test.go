package debug_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/debug"
	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
)

// countdown sets R1 to 5 and decrements it to zero, accumulating in R2.
func countdown() *insts.Builder {
	return insts.NewBuilder().
		RI(insts.OpMOVV8, 1, 5).
		Label("loop").
		RR(insts.OpADD, 2, 1).
		R(insts.OpDEC, 1).
		To(insts.OpJNE, "loop").
		RI(insts.OpSTORE8, 2, 0x800).
		Op(insts.OpHALT)
}

func newCPU(b *insts.Builder) *emu.CPU {
	mem := emu.NewMemory(0x20000)
	Expect(mem.Load(0, b.MustBytes(0))).To(Succeed())
	return emu.NewCPU(mem, nil)
}

var _ = Describe("Condition", func() {
	It("should evaluate registers and flags", func() {
		cpu := newCPU(insts.NewBuilder().RI(insts.OpMOVV8, 2, 15).R(insts.OpCLEAR, 3))
		Expect(cpu.Tick()).To(Succeed())
		Expect(cpu.Tick()).To(Succeed())

		Expect(debug.MustCompile("r2 == 15 and z").Eval(cpu)).To(BeTrue())
		Expect(debug.MustCompile("r2 == 15 and n").Eval(cpu)).To(BeFalse())
		Expect(debug.MustCompile("pc == 0x18 and cycles == 2").Eval(cpu)).To(BeTrue())
		Expect(debug.MustCompile("sp == 0x1C000").Eval(cpu)).To(BeTrue())
	})

	It("should read memory through mem()", func() {
		cpu := newCPU(insts.NewBuilder().Op(insts.OpHALT))
		Expect(cpu.Bus().Write(0x100, 0x1234, emu.Size8)).To(Succeed())

		Expect(debug.MustCompile("mem(0x100) == 0x1234").Eval(cpu)).To(BeTrue())
		Expect(debug.MustCompile("mem(0x100, 1) == 0x34").Eval(cpu)).To(BeTrue())
		Expect(debug.MustCompile("mem(0x100, size=2) == 0x1234").Eval(cpu)).To(BeTrue())
	})

	It("should report evaluation errors", func() {
		cpu := newCPU(insts.NewBuilder().Op(insts.OpHALT))

		_, err := debug.MustCompile("mem(0x100, 3)").Eval(cpu)
		Expect(err).To(MatchError(emu.ErrInvalidSize))

		_, err = debug.MustCompile("mem(0xFFFFFFFF)").Eval(cpu)
		Expect(err).To(HaveOccurred())

		_, err = debug.MustCompile("r99 == 0").Eval(cpu)
		Expect(err).To(HaveOccurred())
	})

	It("should reject syntax errors at compile time", func() {
		_, err := debug.Compile("r1 ==")
		Expect(err).To(MatchError(ContainSubstring("invalid condition")))
		Expect(func() { debug.MustCompile("(") }).To(Panic())
	})
})

var _ = Describe("Debugger", func() {
	var (
		cpu *emu.CPU
		d   *debug.Debugger
	)

	BeforeEach(func() {
		cpu = newCPU(countdown())
		d = debug.New(cpu)
	})

	It("should run to completion", func() {
		reason, err := d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopHalted))
		Expect(cpu.RegFile().ReadReg(2)).To(Equal(uint64(15)))

		reason, err = d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopHalted))
	})

	It("should stop before a breakpoint and resume from it", func() {
		d.AddBreakpoint(0x10) // ADD R2, R1
		Expect(d.Breakpoints()).To(Equal([]uint64{0x10}))

		reason, err := d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopBreakpoint))
		Expect(cpu.PC()).To(Equal(uint64(0x10)))
		Expect(cpu.RegFile().ReadReg(1)).To(Equal(uint64(5)))

		reason, err = d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopBreakpoint))
		Expect(cpu.RegFile().ReadReg(1)).To(Equal(uint64(4)))

		d.RemoveBreakpoint(0x10)
		reason, err = d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopHalted))
	})

	It("should stop when a watched condition becomes true", func() {
		cond := debug.MustCompile("r1 == 2")
		d.Watch(cond)

		reason, err := d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopCondition))
		Expect(d.Triggered()).To(Equal(cond))
		Expect(cpu.RegFile().ReadReg(1)).To(Equal(uint64(2)))

		d.ClearWatches()
		reason, err = d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopHalted))
		Expect(d.Triggered()).To(BeNil())
	})

	It("should stop at the instruction limit", func() {
		reason, err := d.Continue(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(reason).To(Equal(debug.StopLimit))
		Expect(cpu.Cycles()).To(Equal(uint64(3)))
		Expect(reason.String()).To(Equal("limit"))
	})

	It("should single step", func() {
		Expect(d.Step()).To(Succeed())
		Expect(cpu.RegFile().ReadReg(1)).To(Equal(uint64(5)))
		Expect(cpu.PC()).To(Equal(uint64(0x10)))
	})

	It("should drive a custom tick function", func() {
		ticks := 0
		d = debug.New(cpu, debug.WithTick(func() error {
			ticks++
			return cpu.Tick()
		}))
		_, err := d.Continue(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(int(cpu.Cycles())))
	})

	It("should surface execution and condition errors", func() {
		d.Watch(debug.MustCompile("mem(0x100, 5) == 0"))
		_, err := d.Continue(0)
		Expect(err).To(MatchError(emu.ErrInvalidSize))

		cpu = newCPU(insts.NewBuilder().RI(insts.OpLOAD8, 1, 0xFFFFFF))
		d = debug.New(cpu)
		_, err = d.Continue(0)
		Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
	})
})
