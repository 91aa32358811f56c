// Command vm64 loads a program image and runs it on the vm64 CPU.
//
// Usage:
//
//	vm64 [flags] <image>
//
// The image format follows the file extension: .bin/.img are raw little-endian
// bytes, .dump/.mem are memory text dumps, anything else is a word listing.
//
// Example:
//
//	# Run a listing, showing timing statistics
//	vm64 -timing hello.hex
//
//	# Stop as soon as R2 reaches 15
//	vm64 -until 'r2 == 15' loop.hex
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Usage: vm64 [options] <image>\n")
		fmt.Fprintf(w, "\nOptions:\n")
		fs.PrintDefaults()
	}
}
