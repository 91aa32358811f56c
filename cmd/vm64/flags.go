package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/vm64/emu"
	"github.com/sarchlab/vm64/loader"
)

// addrList is a comma separated list of addresses. The flag may also be
// repeated.
type addrList []uint64

func (l *addrList) String() string {
	parts := make([]string, len(*l))
	for i, a := range *l {
		parts[i] = fmt.Sprintf("0x%X", a)
	}
	return strings.Join(parts, ",")
}

func (l *addrList) Set(s string) error {
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		a, err := strconv.ParseUint(field, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid address %q", field)
		}
		*l = append(*l, a)
	}
	return nil
}

type options struct {
	image       string
	format      loader.Format
	memSize     uint64
	base        uint64
	pc          uint64
	pcSet       bool
	sp          uint64
	maxCycles   uint64
	trace       bool
	timing      bool
	configPath  string
	until       string
	breakpoints addrList
	screen      uint64
	keyboard    uint64
	latches     addrList
	input       string
	kbdRaw      bool
	dumpPath    string
	regs        bool
	lang        string
	verbose     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("vm64", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs, stderr)

	format := fs.String("format", "auto", "Image format: auto, listing, dump or binary")
	fs.Uint64Var(&opts.memSize, "mem", 0x20000, "Memory size in bytes")
	fs.Uint64Var(&opts.base, "base", 0, "Load address for listings and binaries")
	fs.Func("pc", "Initial PC (default: load base)", func(s string) error {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return err
		}
		opts.pc, opts.pcSet = v, true
		return nil
	})
	fs.Uint64Var(&opts.sp, "sp", emu.DefaultStackPointer, "Initial stack pointer")
	fs.Uint64Var(&opts.maxCycles, "max-cycles", emu.DefaultMaxCycles, "Instruction ceiling for the run")
	fs.BoolVar(&opts.trace, "trace", false, "Trace each instruction to stderr")
	fs.BoolVar(&opts.timing, "timing", false, "Enable timing simulation mode")
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.StringVar(&opts.until, "until", "", "Stop when this condition becomes true, e.g. 'r2 == 15 and z'")
	fs.Var(&opts.breakpoints, "break", "Breakpoint addresses (comma separated)")
	fs.Uint64Var(&opts.screen, "screen", emu.ScreenAddr, "Screen device address")
	fs.Uint64Var(&opts.keyboard, "keyboard", emu.KeyboardAddr, "Keyboard device address")
	fs.Var(&opts.latches, "latch", "Latch device addresses (comma separated)")
	fs.StringVar(&opts.input, "input", "", "Text queued on the keyboard before the run")
	fs.BoolVar(&opts.kbdRaw, "kbd-raw", false, "Feed raw terminal keystrokes to the keyboard")
	fs.StringVar(&opts.dumpPath, "dump", "", "Write a memory text dump to this file after the run")
	fs.BoolVar(&opts.regs, "regs", false, "Print the register state after the run")
	fs.StringVar(&opts.lang, "lang", "", "Language for number formatting (default: system locale)")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if opts.format, err = loader.ParseFormat(*format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one image")
	}
	opts.image = fs.Arg(0)

	return opts, nil
}
