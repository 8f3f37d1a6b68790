// Package main provides the entry point for O3Sim.
// O3Sim is a cycle-accurate out-of-order CPU simulator.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/o3sim/emu"
	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/loader"
	"github.com/sarchlab/o3sim/timing/core"
	"github.com/sarchlab/o3sim/timing/latency"
	"github.com/sarchlab/o3sim/timing/pipeline"
)

var (
	emuMode    = flag.Bool("emu", false, "Run in functional emulation mode (no timing)")
	configPath = flag.String("config", "", "Path to timing configuration JSON file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: o3sim [options] <program.asm>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	code, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "sim> CPU initialized ; %d instructions\n", len(code))
		fmt.Printf("%-9s %-20s\n", "pc", "instruction")
		for i, inst := range code {
			fmt.Printf("%-9d %-20s\n", insts.CodeStartAddr+i*insts.InstructionSize, inst)
		}
	}

	if *emuMode {
		os.Exit(runEmulation(code))
	}
	os.Exit(runREPL(code))
}

// runEmulation executes the program on the in-order reference machine.
func runEmulation(code []insts.Instruction) int {
	machine := emu.NewMachine(code)
	if err := machine.Run(0); err != nil {
		fmt.Fprintf(os.Stderr, "sim> Emulation failed: %v\n", err)
		return 1
	}

	fmt.Printf("sim> Completed after %d instructions.\n", machine.InstructionCount())
	for r, v := range machine.Regs() {
		fmt.Printf("R%-2d = %d\n", r, v)
	}
	return 0
}

// runREPL drives the timing simulation one command at a time.
func runREPL(code []insts.Instruction) int {
	timingConfig := latency.DefaultTimingConfig()
	if *configPath != "" {
		var err error
		timingConfig, err = latency.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			return 1
		}
	}

	c := core.NewCore(code,
		pipeline.WithLatencyTable(latency.NewTableWithConfig(timingConfig)),
	)

	printUsage()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("sim> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "step" {
			fmt.Println("sim> Simulating 1 cycle.")
			c.RunCyclesDisplayed(1, os.Stdout)
			reportIfDone(c)
			continue
		}

		switch fields[0] {
		case "simulate", "sim":
			n, ok := cycleArg(fields)
			if !ok {
				continue
			}
			fmt.Printf("sim> Simulating %d cycles.\n", n)
			c.RunCycles(n)
			fmt.Printf("sim> Reached %d cycles\n", c.Cycle())
			reportIfDone(c)

		case "display":
			n, ok := cycleArg(fields)
			if !ok {
				continue
			}
			fmt.Printf("sim> Simulating %d cycles.\n", n)
			c.RunCyclesDisplayed(n, os.Stdout)
			fmt.Printf("sim> Reached %d cycles\n", c.Cycle())
			reportIfDone(c)

		case "quit", "q":
			fmt.Println("sim> Aufwiedersehen!")
			if *verbose {
				printStats(c)
			}
			return 0

		default:
			fmt.Printf("sim> Invalid token: %s\n", fields[0])
			printUsage()
		}
	}
	return 0
}

func cycleArg(fields []string) (uint64, bool) {
	if len(fields) < 2 {
		fmt.Fprintln(os.Stderr, "sim> Did not provide number of cycles to simulate.")
		return 0, false
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sim> Invalid cycle count: %s\n", fields[1])
		return 0, false
	}
	return n, true
}

func reportIfDone(c *core.Core) {
	if c.Done() {
		fmt.Printf("sim> No more instructions to simulate. Completed at %d cycles.\n", c.Cycle())
	}
}

func printStats(c *core.Core) {
	stats := c.Stats()
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("Instructions Committed: %d\n", stats.Committed)
	fmt.Printf("CPI: %.2f\n", stats.CPI)
	fmt.Printf("Branches: %d\n", stats.Branches)
	fmt.Printf("Squashes: %d\n", stats.Squashes)
	fmt.Printf("Dispatch Stalls: %d\n", stats.DispatchStalls)
}

func printUsage() {
	fmt.Println("sim> Commands: simulate <n> | display <n> | step | quit")
}
