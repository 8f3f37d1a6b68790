// Package main provides the entry point for O3Sim.
// O3Sim is a cycle-accurate simulator for an out-of-order superscalar
// processor with register renaming, a reorder buffer and speculative
// execution.
//
// For the full CLI, use: go run ./cmd/o3sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("O3Sim - Out-of-Order CPU Simulator")
	fmt.Println("")
	fmt.Println("Usage: o3sim [options] <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -emu       Run in functional emulation mode (no timing)")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/o3sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/o3sim' instead.")
	}
}
