package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vm64/insts"
	"github.com/sarchlab/vm64/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	inst := func(op insts.Op) *insts.Instruction {
		info, ok := insts.Lookup(op)
		Expect(ok).To(BeTrue())
		return &insts.Instruction{Op: op, Format: info.Format}
	}

	Describe("Default Timing Values", func() {
		It("should pass validation", func() {
			Expect(table.Config().Validate()).To(Succeed())
		})

		It("should make division slower than multiplication", func() {
			config := table.Config()
			Expect(config.DivideLatency).To(BeNumerically(">", config.MultiplyLatency))
			Expect(config.MultiplyLatency).To(BeNumerically(">", config.ALULatency))
		})
	})

	DescribeTable("instruction latencies",
		func(op insts.Op, want func(*latency.TimingConfig) uint64) {
			Expect(table.GetLatency(inst(op))).To(Equal(want(table.Config())))
		},
		Entry("ADD", insts.OpADD, func(c *latency.TimingConfig) uint64 { return c.ALULatency }),
		Entry("ADDV4", insts.OpADDV4, func(c *latency.TimingConfig) uint64 { return c.ALULatency }),
		Entry("MULS8", insts.OpMULS8, func(c *latency.TimingConfig) uint64 { return c.MultiplyLatency }),
		Entry("MOD2", insts.OpMOD2, func(c *latency.TimingConfig) uint64 { return c.DivideLatency }),
		Entry("XORV", insts.OpXORV, func(c *latency.TimingConfig) uint64 { return c.LogicLatency }),
		Entry("MOVV8", insts.OpMOVV8, func(c *latency.TimingConfig) uint64 { return c.MoveLatency }),
		Entry("LOADR4", insts.OpLOADR4, func(c *latency.TimingConfig) uint64 { return c.LoadLatency }),
		Entry("STORE1", insts.OpSTORE1, func(c *latency.TimingConfig) uint64 { return c.StoreLatency }),
		Entry("CMPV2", insts.OpCMPV2, func(c *latency.TimingConfig) uint64 { return c.CompareLatency }),
		Entry("SETC", insts.OpSETC, func(c *latency.TimingConfig) uint64 { return c.FlagLatency }),
		Entry("JNE", insts.OpJNE, func(c *latency.TimingConfig) uint64 { return c.BranchLatency }),
		Entry("RET", insts.OpRET, func(c *latency.TimingConfig) uint64 { return c.CallLatency }),
		Entry("PUSH8", insts.OpPUSH8, func(c *latency.TimingConfig) uint64 { return c.StackLatency }),
		Entry("SVIO", insts.OpSVIO, func(c *latency.TimingConfig) uint64 { return c.IOLatency }),
		Entry("FMUL4", insts.OpFMUL4, func(c *latency.TimingConfig) uint64 { return c.FPULatency }),
		Entry("FSQRT8", insts.OpFSQRT8, func(c *latency.TimingConfig) uint64 { return c.FPUDivideLatency }),
		Entry("FCOS4", insts.OpFCOS4, func(c *latency.TimingConfig) uint64 { return c.FPUComplexLatency }),
		Entry("CVTI2F8", insts.OpCVTI2F8, func(c *latency.TimingConfig) uint64 { return c.ConvertLatency }),
		Entry("HALT", insts.OpHALT, func(c *latency.TimingConfig) uint64 { return c.ControlLatency }),
	)

	It("should give every opcode a positive latency", func() {
		for _, op := range insts.Ops() {
			Expect(table.GetLatency(inst(op))).To(BeNumerically(">", 0), op.String())
		}
	})

	It("should return 1 for a nil instruction", func() {
		Expect(table.GetLatency(nil)).To(Equal(uint64(1)))
	})

	Describe("Instruction classification", func() {
		It("should identify memory operations", func() {
			Expect(table.IsMemoryOp(inst(insts.OpLOAD8))).To(BeTrue())
			Expect(table.IsMemoryOp(inst(insts.OpSTORER2))).To(BeTrue())
			Expect(table.IsMemoryOp(inst(insts.OpPOP4))).To(BeTrue())
			Expect(table.IsMemoryOp(inst(insts.OpCALL))).To(BeTrue())
			Expect(table.IsMemoryOp(inst(insts.OpADD))).To(BeFalse())
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
		})

		It("should distinguish loads and stores", func() {
			Expect(table.IsLoadOp(inst(insts.OpLOADB))).To(BeTrue())
			Expect(table.IsLoadOp(inst(insts.OpSTORE))).To(BeFalse())
			Expect(table.IsStoreOp(inst(insts.OpSTORE))).To(BeTrue())
			Expect(table.IsStoreOp(nil)).To(BeFalse())
		})

		It("should identify branches", func() {
			Expect(table.IsBranchOp(inst(insts.OpJMP))).To(BeTrue())
			Expect(table.IsBranchOp(inst(insts.OpCALL))).To(BeTrue())
			Expect(table.IsBranchOp(inst(insts.OpCMP))).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom latency values", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 2
			config.FPUComplexLatency = 100

			custom := latency.NewTableWithConfig(config)
			Expect(custom.GetLatency(inst(insts.OpADD))).To(Equal(uint64(2)))
			Expect(custom.ClassLatency(insts.ClassFPUComplex)).To(Equal(uint64(100)))
		})
	})

	Describe("Validate", func() {
		It("should reject zero latencies", func() {
			config := latency.DefaultTimingConfig()
			config.StackLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("stack_latency")))
		})

		It("should reject inconsistent cache geometry", func() {
			config := latency.DefaultTimingConfig()
			config.DCacheBlockSize = 48
			Expect(config.Validate()).To(MatchError(ContainSubstring("power of two")))

			config = latency.DefaultTimingConfig()
			config.DCacheSize = 1000
			Expect(config.Validate()).To(MatchError(ContainSubstring("dcache_size")))

			config = latency.DefaultTimingConfig()
			config.DCacheMissLatency = 1
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Config persistence", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load a config", func() {
			config := latency.DefaultTimingConfig()
			config.IOLatency = 7
			path := filepath.Join(tempDir, "timing.json")
			Expect(config.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(config))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"divide_latency": 30}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.DivideLatency).To(Equal(uint64(30)))
			Expect(loaded.ALULatency).To(Equal(uint64(1)))
		})

		It("should report malformed files", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{`), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse")))

			_, err = latency.LoadConfig(filepath.Join(tempDir, "none.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})

		It("should clone independently", func() {
			config := latency.DefaultTimingConfig()
			clone := config.Clone()
			clone.LoadLatency = 99
			Expect(config.LoadLatency).To(Equal(uint64(3)))
		})
	})
})
