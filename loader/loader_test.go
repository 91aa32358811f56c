package loader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
	"github.com/sarchlab/vm64/loader"
)

var _ = Describe("Loader", func() {
	Describe("ParseListing", func() {
		It("should parse one word per line", func() {
			words, err := loader.ParseListing(strings.NewReader(
				"0413100000000000\n000000000000002A\n\n0000000000000000\n"), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint64{0x0413100000000000, 0x2A, 0}))
		})

		It("should relocate bracketed addresses by the base", func() {
			words, err := loader.ParseListing(strings.NewReader(
				"0090000000000000\n[0010]\n0000000000000000\n"), 0x400)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint64{0x0090000000000000, 0x410, 0}))
		})

		It("should accept address columns, 0x prefixes and comments", func() {
			words, err := loader.ParseListing(strings.NewReader(
				"; program\n# header\n0000: 0061100000000000 LOADV R1\n0x000000000000000A\n"), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint64{0x0061100000000000, 0x0A}))
		})

		It("should report the line of a bad word", func() {
			_, err := loader.ParseListing(strings.NewReader("0000000000000000\nZZZZ\n"), 0)
			Expect(err).To(MatchError(ContainSubstring("line 2")))

			_, err = loader.ParseListing(strings.NewReader("[0010\n"), 0)
			Expect(err).To(MatchError(ContainSubstring("unterminated")))
		})
	})

	Describe("ParseDump", func() {
		It("should read what Memory.SaveText writes", func() {
			mem := emu.NewMemory(16)
			Expect(mem.Write(0, 0x1122334455667788, emu.Size8)).To(Succeed())
			Expect(mem.Write(8, 0xAB, emu.Size1)).To(Succeed())

			var buf bytes.Buffer
			Expect(mem.SaveText(&buf)).To(Succeed())

			data, err := loader.ParseDump(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(mem.Snapshot()))
		})

		It("should reject invalid bytes", func() {
			_, err := loader.ParseDump(strings.NewReader("0000: 00 GG\n"))
			Expect(err).To(MatchError(ContainSubstring("invalid byte")))
		})
	})

	Describe("Read", func() {
		It("should place a listing at the base and start there", func() {
			prog, err := loader.Read(strings.NewReader("0000000000000001\n0000000000000000\n"),
				loader.Options{Base: 0x100})
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(Equal(uint64(0x100)))
			Expect(prog.InitialSP).To(Equal(emu.DefaultStackPointer))
			Expect(prog.Segments).To(HaveLen(1))
			Expect(prog.Segments[0].Addr).To(Equal(uint64(0x100)))
			Expect(prog.End()).To(Equal(uint64(0x110)))
			Expect(prog.Size()).To(Equal(16))
			Expect(prog.Words()).To(Equal([]uint64{1, 0}))
		})

		It("should read raw binaries", func() {
			prog, err := loader.Read(bytes.NewReader([]byte{1, 2, 3}),
				loader.Options{Format: loader.FormatBinary, Base: 8, StackPointer: 0x800})
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.InitialSP).To(Equal(uint64(0x800)))
			Expect(prog.Segments[0].Data).To(Equal([]byte{1, 2, 3}))
			Expect(prog.Words()).To(Equal([]uint64{0x030201}))
		})

		It("should load dumps at address 0 regardless of the base", func() {
			prog, err := loader.Read(strings.NewReader("# RAM size: 8 bytes\n0000: 01 00 00 00 00 00 00 00\n"),
				loader.Options{Format: loader.FormatDump, Base: 0x40})
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.EntryPoint).To(BeZero())
			Expect(prog.Segments[0].Addr).To(BeZero())
		})

		It("should produce no segments for an empty image", func() {
			prog, err := loader.Read(strings.NewReader(""), loader.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Segments).To(BeEmpty())
			Expect(prog.Words()).To(BeNil())
		})
	})

	Describe("formats", func() {
		It("should pick formats from extensions", func() {
			Expect(loader.FormatFor("a.bin")).To(Equal(loader.FormatBinary))
			Expect(loader.FormatFor("a.MEM")).To(Equal(loader.FormatDump))
			Expect(loader.FormatFor("a.hex")).To(Equal(loader.FormatListing))
		})

		It("should parse format names", func() {
			f, err := loader.ParseFormat("bin")
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(loader.FormatBinary))
			Expect(f.String()).To(Equal("binary"))

			_, err = loader.ParseFormat("elf")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("running a loaded program", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "vm64-loader-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should run a relocated listing at a non-zero base", func() {
			// JMP [0018]; HALT; MOVV8 R1, 7; HALT
			path := filepath.Join(tempDir, "prog.hex")
			listing := strings.Join([]string{
				"0090000000000000",
				"[0018]",
				"0000000000000000",
				"0413100000000000",
				"0000000000000007",
				"0000000000000000",
			}, "\n")
			Expect(os.WriteFile(path, []byte(listing), 0o644)).To(Succeed())

			prog, err := loader.Load(path, loader.Options{Base: 0x1000})
			Expect(err).NotTo(HaveOccurred())

			mem := emu.NewMemory(0x20000)
			Expect(prog.LoadInto(mem)).To(Succeed())

			cpu := emu.NewCPU(mem, nil,
				emu.WithEntryPoint(prog.EntryPoint),
				emu.WithStackPointer(prog.InitialSP))
			Expect(cpu.Run(100)).To(Succeed())
			Expect(cpu.RegFile().ReadReg(1)).To(Equal(uint64(7)))
			Expect(cpu.PC()).To(Equal(uint64(0x1000 + 0x30)))
		})

		It("should round trip a built program through a binary file", func() {
			b := insts.NewBuilder().RI(insts.OpMOVV8, 2, 5).Op(insts.OpHALT)
			path := filepath.Join(tempDir, "prog.bin")
			Expect(os.WriteFile(path, b.MustBytes(0), 0o644)).To(Succeed())

			prog, err := loader.Load(path, loader.Options{})
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(prog.WriteListing(&buf)).To(Succeed())
			Expect(buf.String()).To(Equal("0413200000000000\n0000000000000005\n0000000000000000\n"))
		})

		It("should fail when the image does not fit", func() {
			prog := &loader.Program{Segments: []loader.Segment{{Addr: 0x10, Data: make([]byte, 32)}}}
			err := prog.LoadInto(emu.NewMemory(16))
			Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
		})

		It("should report missing files", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.hex"), loader.Options{})
			Expect(err).To(MatchError(ContainSubstring("failed to open image")))
		})
	})
})
