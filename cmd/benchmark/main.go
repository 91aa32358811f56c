// Command benchmark runs the vm64 timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv     Output results in CSV format (default: human-readable)
//	-json    Output results in JSON format
//	-core    Run only the quick core set
//	-config  Path to timing configuration JSON file
//	-lang    Language for number formatting
//	-v       Show the instruction mix of each benchmark
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// Each benchmark checks the value it leaves in R0, so the harness doubles as
// a functional regression test of the timing core.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/vm64/benchmarks"
	"github.com/sarchlab/vm64/internal/report"
	"github.com/sarchlab/vm64/timing/latency"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	configPath := flag.String("config", "", "Path to timing configuration JSON file")
	lang := flag.String("lang", "", "Language for number formatting (default: system locale)")
	verbose := flag.Bool("v", false, "Show the instruction mix of each benchmark")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.Verbose = *verbose
	if *lang != "" {
		config.Printer = report.New(*lang)
	}
	if *configPath != "" {
		timing, err := latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timing
	}

	// Create harness and add benchmarks
	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("vm64 Timing Benchmark Harness")
		fmt.Println("=============================")
		fmt.Printf("D-Cache: %d bytes, %d-way, %d-byte lines\n",
			config.Timing.DCacheSize, config.Timing.DCacheAssociativity, config.Timing.DCacheBlockSize)
		fmt.Println("")
	}

	// Run benchmarks
	results := harness.RunAll()

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Passed: %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Average CPI: %.3f\n", summary.AverageCPI)
	}

	for _, r := range results {
		if !r.Passed {
			os.Exit(1)
		}
	}
}
