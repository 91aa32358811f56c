package benchmarks

import (
	"math"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/insts"
)

// GetMicrobenchmarks returns the standard set of vm64 sample programs. Each
// leaves its result in R0 and targets one part of the timing model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		sumLoop(),
		dependencyChain(),
		factorialCalls(),
		memoryCopy(),
		stridedMemory(),
		branchAlternating(),
		harmonicSeries(),
	}
}

// GetCoreBenchmarks returns a small set for quick validation: a loop,
// calls and memory traffic.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		sumLoop(),
		factorialCalls(),
		memoryCopy(),
	}
}

// 1. Sum Loop - counted loop with one add per iteration
func sumLoop() Benchmark {
	return Benchmark{
		Name:        "sum_loop",
		Description: "Sum 1..100 in a counted loop - measures ALU and taken-branch cost",
		Program: insts.NewBuilder().
			R(insts.OpCLEAR, 0).
			RI(insts.OpMOVV8, 1, 100).
			Label("loop").
			RR(insts.OpADD, 0, 1).
			R(insts.OpDEC, 1).
			To(insts.OpJNE, "loop").
			Op(insts.OpHALT),
		ExpectedResult: 5050,
	}
}

// 2. Dependency Chain - each instruction reads the previous result
func dependencyChain() Benchmark {
	b := insts.NewBuilder().R(insts.OpCLEAR, 0)
	for i := 0; i < 20; i++ {
		b.R(insts.OpINC, 0)
	}
	for i := 0; i < 10; i++ {
		b.RR(insts.OpMUL, 0, 0)
		b.RI(insts.OpANDV, 0, 0xFF)
	}
	b.Op(insts.OpHALT)

	// 20, then repeatedly squared and masked to a byte.
	want := uint64(20)
	for i := 0; i < 10; i++ {
		want = want * want & 0xFF
	}

	return Benchmark{
		Name:           "dependency_chain",
		Description:    "20 INCs then 10 MUL/AND pairs on R0 - measures multiply latency",
		Program:        b,
		ExpectedResult: want,
	}
}

// 3. Factorial Calls - recursive factorial through CALL/RET and the stack
func factorialCalls() Benchmark {
	return Benchmark{
		Name:        "factorial_calls",
		Description: "Recursive 10! with PUSH/POP - measures call and stack overhead",
		Program: insts.NewBuilder().
			RI(insts.OpMOVV8, 1, 10).
			To(insts.OpCALL, "fact").
			Op(insts.OpHALT).
			// fact: R0 = R1!, clobbers R1
			Label("fact").
			RI(insts.OpCMPV, 1, 1).
			To(insts.OpJLT, "base").
			To(insts.OpJEQ, "base").
			R(insts.OpPUSH8, 1).
			R(insts.OpDEC, 1).
			To(insts.OpCALL, "fact").
			R(insts.OpPOP8, 1).
			RR(insts.OpMUL, 0, 1).
			Op(insts.OpRET).
			Label("base").
			RI(insts.OpMOVV8, 0, 1).
			Op(insts.OpRET),
		ExpectedResult: 3628800,
	}
}

const (
	copySrc   = 0x4000
	copyDst   = 0x6000
	copyWords = 64
)

// 4. Memory Copy - sequential word copy through register pointers
func memoryCopy() Benchmark {
	var want uint64
	for i := uint64(0); i < copyWords; i++ {
		want += i * 3
	}

	return Benchmark{
		Name:        "memory_copy",
		Description: "Copy 64 words then checksum the copy - measures sequential data cache hits",
		Setup: func(_ *emu.CPU, mem *emu.Memory) error {
			for i := uint64(0); i < copyWords; i++ {
				if err := mem.Write(copySrc+8*i, i*3, emu.Size8); err != nil {
					return err
				}
			}
			return nil
		},
		Program: insts.NewBuilder().
			RI(insts.OpMOVV8, 2, copySrc).
			RI(insts.OpMOVV8, 3, copyDst).
			RI(insts.OpMOVV8, 4, copyWords).
			Label("copy").
			RR(insts.OpLOADR8, 5, 2).
			RR(insts.OpSTORER8, 5, 3).
			RI(insts.OpADDV, 2, 8).
			RI(insts.OpADDV, 3, 8).
			R(insts.OpDEC, 4).
			To(insts.OpJNE, "copy").
			R(insts.OpCLEAR, 0).
			RI(insts.OpMOVV8, 3, copyDst).
			RI(insts.OpMOVV8, 4, copyWords).
			Label("sum").
			RR(insts.OpLOADR8, 5, 3).
			RR(insts.OpADD, 0, 5).
			RI(insts.OpADDV, 3, 8).
			R(insts.OpDEC, 4).
			To(insts.OpJNE, "sum").
			Op(insts.OpHALT),
		ExpectedResult: want,
	}
}

// 5. Strided Memory - touches one byte per 64-byte line over 16KB, twice
func stridedMemory() Benchmark {
	return Benchmark{
		Name:        "strided_memory",
		Description: "Two passes of line-strided byte stores over 16KB - measures data cache misses",
		Program: insts.NewBuilder().
			RI(insts.OpMOVV8, 6, 2).
			R(insts.OpCLEAR, 0).
			Label("pass").
			RI(insts.OpMOVV8, 2, 0x8000).
			RI(insts.OpMOVV8, 4, 256).
			Label("touch").
			RR(insts.OpSTORER1, 4, 2).
			RI(insts.OpADDV, 2, 64).
			R(insts.OpINC, 0).
			R(insts.OpDEC, 4).
			To(insts.OpJNE, "touch").
			R(insts.OpDEC, 6).
			To(insts.OpJNE, "pass").
			Op(insts.OpHALT),
		ExpectedResult: 512,
	}
}

// 6. Branch Alternating - a jump that is taken every other iteration
func branchAlternating() Benchmark {
	return Benchmark{
		Name:        "branch_alternating",
		Description: "Count odd numbers below 200 - jumps alternate taken/not taken",
		Program: insts.NewBuilder().
			R(insts.OpCLEAR, 0).
			RI(insts.OpMOVV8, 1, 200).
			Label("loop").
			R(insts.OpDEC, 1).
			RR(insts.OpMOV8, 2, 1).
			RI(insts.OpANDV, 2, 1).
			To(insts.OpJEQ, "even").
			R(insts.OpINC, 0).
			Label("even").
			RI(insts.OpCMPV, 1, 0).
			To(insts.OpJNE, "loop").
			Op(insts.OpHALT),
		ExpectedResult: 100,
	}
}

// 7. Harmonic Series - binary64 divide and add, converted back to an integer
func harmonicSeries() Benchmark {
	const terms = 50

	// Same summation order as the program: k counts down.
	sum := 0.0
	for k := terms; k >= 1; k-- {
		sum += 1 / float64(k)
	}

	return Benchmark{
		Name:        "harmonic_series",
		Description: "1000 * sum(1/k, k=1..50) in binary64 - measures FPU divide latency",
		Program: insts.NewBuilder().
			RI(insts.OpMOVV8, 0, 0).
			RI(insts.OpMOVV8, 1, terms).
			RI(insts.OpMOVV8, 4, math.Float64bits(1)).
			Label("loop").
			RR(insts.OpCVTI2F8, 2, 1).
			RR(insts.OpMOV8, 3, 4).
			RR(insts.OpFDIV8, 3, 2).
			RR(insts.OpFADD8, 0, 3).
			R(insts.OpDEC, 1).
			To(insts.OpJNE, "loop").
			RI(insts.OpMOVV8, 5, math.Float64bits(1000)).
			RR(insts.OpFMUL8, 0, 5).
			RR(insts.OpCVTF2I8, 0, 0).
			Op(insts.OpHALT),
		ExpectedResult: uint64(math.Trunc(sum * 1000)),
	}
}
