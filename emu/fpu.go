// Package emu provides functional vm64 emulation.
package emu

import (
	"math"

	"github.com/go-logr/logr"
)

// FPU implements vm64 floating-point operations on register bit patterns.
// Size 4 selects IEEE-754 binary32 and size 8 selects binary64.
//
// Every arithmetic operation overwrites the flags: Z when the result is
// zero of either sign, N from the sign bit, V when the result is NaN or
// infinite, and C is always cleared. Domain errors never fail; they return
// infinity or NaN and log a warning.
type FPU struct {
	regFile *RegFile
	log     logr.Logger
}

// NewFPU creates a new FPU connected to the given register file.
func NewFPU(regFile *RegFile, log logr.Logger) *FPU {
	return &FPU{regFile: regFile, log: log}
}

// Add returns a + b.
func (f *FPU) Add(a, b uint64, size Size) uint64 {
	return f.binary("add", a, b, size, func(x, y float64) float64 { return x + y },
		func(x, y float32) float32 { return x + y })
}

// Sub returns a - b.
func (f *FPU) Sub(a, b uint64, size Size) uint64 {
	return f.binary("sub", a, b, size, func(x, y float64) float64 { return x - y },
		func(x, y float32) float32 { return x - y })
}

// Mul returns a * b.
func (f *FPU) Mul(a, b uint64, size Size) uint64 {
	return f.binary("mul", a, b, size, func(x, y float64) float64 { return x * y },
		func(x, y float32) float32 { return x * y })
}

// Div returns a / b. Division by zero returns an infinity whose sign is the
// product of the operand signs, including 0/0.
func (f *FPU) Div(a, b uint64, size Size) uint64 {
	x, y := toFloat(a, size), toFloat(b, size)
	f.checkOperands("div", x, y)

	if y == 0 {
		f.log.Info("FPU division by zero", "size", size)
		sign := 1
		if math.Signbit(x) != math.Signbit(y) {
			sign = -1
		}
		return f.finish(math.Inf(sign), size)
	}

	if size == Size4 {
		return f.finish32(float32(x) / float32(y))
	}
	return f.finish(x/y, size)
}

// Sqrt returns the square root of a. The square root of a negative value
// is NaN.
func (f *FPU) Sqrt(a uint64, size Size) uint64 {
	x := toFloat(a, size)
	f.checkOperands("sqrt", x)

	if x < 0 {
		f.log.Info("FPU square root of negative value", "value", x)
		return f.finish(math.NaN(), size)
	}
	return f.finish(math.Sqrt(x), size)
}

// Sin returns the sine of a (radians).
func (f *FPU) Sin(a uint64, size Size) uint64 {
	x := toFloat(a, size)
	f.checkOperands("sin", x)
	return f.finish(math.Sin(x), size)
}

// Cos returns the cosine of a (radians).
func (f *FPU) Cos(a uint64, size Size) uint64 {
	x := toFloat(a, size)
	f.checkOperands("cos", x)
	return f.finish(math.Cos(x), size)
}

// IntToFloat converts a signed integer of the given width to a float of
// the same width. Flags are not changed.
func (f *FPU) IntToFloat(v uint64, size Size) uint64 {
	i := size.SignExtend(v)
	if size == Size4 {
		return uint64(math.Float32bits(float32(i)))
	}
	return math.Float64bits(float64(i))
}

// FloatToInt converts a float of the given width to a signed integer of the
// same width, truncating toward zero. NaN converts to 0 and out-of-range
// values saturate; both log a warning. Flags are not changed.
func (f *FPU) FloatToInt(v uint64, size Size) uint64 {
	x := math.Trunc(toFloat(v, size))
	lo := -math.Ldexp(1, int(size.Bits())-1)
	hi := math.Ldexp(1, int(size.Bits())-1)

	var i int64
	switch {
	case math.IsNaN(x):
		f.log.Info("FPU conversion of NaN to integer")
		i = 0
	case x < lo:
		f.log.Info("FPU conversion out of range", "value", x)
		i = -int64(size.SignBit())
	case x >= hi:
		f.log.Info("FPU conversion out of range", "value", x)
		i = int64(size.SignBit() - 1)
	default:
		i = int64(x)
	}
	return uint64(i) & size.Mask()
}

func (f *FPU) binary(
	name string, a, b uint64, size Size,
	op64 func(x, y float64) float64,
	op32 func(x, y float32) float32,
) uint64 {
	x, y := toFloat(a, size), toFloat(b, size)
	f.checkOperands(name, x, y)

	if size == Size4 {
		return f.finish32(op32(float32(x), float32(y)))
	}
	return f.finish(op64(x, y), size)
}

func (f *FPU) checkOperands(name string, operands ...float64) {
	for _, v := range operands {
		if math.IsNaN(v) {
			f.log.Info("FPU operation with NaN operand", "op", name)
			return
		}
	}
	for _, v := range operands {
		if math.IsInf(v, 0) {
			f.log.Info("FPU operation with infinite operand", "op", name)
			return
		}
	}
}

func (f *FPU) finish32(r float32) uint64 {
	f.setFlags(float64(r))
	return uint64(math.Float32bits(r))
}

func (f *FPU) finish(r float64, size Size) uint64 {
	if size == Size4 {
		return f.finish32(float32(r))
	}
	f.setFlags(r)
	return math.Float64bits(r)
}

func (f *FPU) setFlags(r float64) {
	flags := &f.regFile.Flags
	flags.Z = r == 0
	flags.N = math.Signbit(r)
	flags.C = false
	flags.V = math.IsNaN(r) || math.IsInf(r, 0)
}

// toFloat reinterprets the low size bytes of v as an IEEE-754 value.
// Widths other than 4 are treated as binary64.
func toFloat(v uint64, size Size) float64 {
	if size == Size4 {
		return float64(math.Float32frombits(uint32(v)))
	}
	return math.Float64frombits(v)
}
