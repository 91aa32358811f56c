package emu_test

import (
	"bytes"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/emu"
)

var _ = Describe("IOSystem", func() {
	var (
		ioSys    *emu.IOSystem
		warnings []string
	)

	BeforeEach(func() {
		warnings = nil
		log := funcr.New(func(_, args string) {
			warnings = append(warnings, args)
		}, funcr.Options{})
		ioSys = emu.NewIOSystem(emu.WithIOLogger(log))
	})

	It("should drop writes and read 0 at unmapped addresses with a warning", func() {
		ioSys.Write(0x999, 1)
		Expect(ioSys.Read(0x999)).To(BeZero())
		ioSys.Show(0x999)
		Expect(warnings).To(HaveLen(3))
		Expect(warnings[0]).To(ContainSubstring("unmapped"))
	})

	It("should dispatch to the registered device", func() {
		latch := emu.NewLatch(0x30, nil)
		ioSys.Register(0x30, latch)
		ioSys.Write(0x30, 15)
		Expect(ioSys.Read(0x30)).To(Equal(uint64(15)))
		Expect(warnings).To(BeEmpty())
	})

	It("should replace a device registered twice at one address", func() {
		first, second := emu.NewKeyboard(), emu.NewKeyboard()
		ioSys.Register(0x200, first)
		ioSys.Register(0x200, second)
		dev, ok := ioSys.Device(0x200)
		Expect(ok).To(BeTrue())
		Expect(dev).To(BeIdenticalTo(second))
	})

	It("should reset every resettable device", func() {
		screen := emu.NewScreen(nil)
		kbd := emu.NewKeyboard()
		ioSys.Register(emu.ScreenAddr, screen)
		ioSys.Register(emu.KeyboardAddr, kbd)
		screen.Write('x')
		kbd.Write('y')

		ioSys.Reset()

		Expect(screen.Text()).To(BeEmpty())
		Expect(kbd.Pending()).To(BeZero())
		Expect(ioSys.Addresses()).To(Equal([]uint64{emu.ScreenAddr, emu.KeyboardAddr}))
	})

	Describe("Screen", func() {
		It("should flush pending text on Show", func() {
			var out bytes.Buffer
			screen := emu.NewScreen(&out)
			screen.Write('h')
			screen.Write(0x169)
			Expect(out.String()).To(BeEmpty())

			screen.Show()
			Expect(out.String()).To(Equal("hi"))
			screen.Show()
			Expect(out.String()).To(Equal("hi"))

			last, ok := screen.Last()
			Expect(ok).To(BeTrue())
			Expect(last).To(Equal(byte('i')))
			Expect(screen.Read()).To(BeZero())
		})
	})

	Describe("Keyboard", func() {
		It("should be a FIFO that reads 0xFF when empty", func() {
			kbd := emu.NewKeyboard()
			kbd.Type("ab")
			kbd.Write(0x163)
			Expect(kbd.Read()).To(Equal(uint64('a')))
			Expect(kbd.Read()).To(Equal(uint64('b')))
			Expect(kbd.Read()).To(Equal(uint64('c')))
			Expect(kbd.Read()).To(Equal(emu.KeyboardEmpty))
		})
	})

	Describe("Latch", func() {
		It("should print its value on Show", func() {
			var out bytes.Buffer
			latch := emu.NewLatch(0x30, &out)
			latch.Write(15)
			latch.Show()
			Expect(out.String()).To(Equal("[IO 0x30] = 15\n"))
		})
	})
})
