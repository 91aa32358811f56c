// Package main provides the entry point for vm64.
// vm64 is an educational 64-bit register virtual machine with an optional
// timing model.
//
// For the full CLI, use: go run ./cmd/vm64
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("vm64 - educational 64-bit register virtual machine")
	fmt.Println("")
	fmt.Println("Usage: vm64 [options] <image>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -timing    Enable timing simulation mode")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -until     Stop when a condition becomes true")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/vm64' for the full CLI,")
	fmt.Println("or 'go run ./cmd/benchmark' for the timing benchmarks.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/vm64' instead.")
	}
}
