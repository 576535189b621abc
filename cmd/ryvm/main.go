// Command ryvm loads and runs a RyVM binary image. Grounded on the
// teacher's main.go flag-based style, shrunk to one job.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/oconnor-ryan/ryvm-go/config"
	"github.com/oconnor-ryan/ryvm-go/image"
	"github.com/oconnor-ryan/ryvm-go/monitor"
	"github.com/oconnor-ryan/ryvm-go/vm"
)

func main() {
	var (
		trace      = flag.Bool("trace", false, "print each instruction's address before executing it")
		monitorTUI = flag.Bool("monitor", false, "open the interactive register/flags/output monitor")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ryvm [-trace] [-monitor] <program.ryc>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryvm: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0)) // #nosec G304 -- CLI-provided input path
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryvm: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	loaded, err := image.Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryvm: %v\n", err)
		os.Exit(1)
	}

	var log strings.Builder
	machine := vm.New(loaded, &log)
	machine.PrintFormat = cfg.VM.PrintFormat

	if *monitorTUI {
		mon := monitor.New(machine, &log)
		if err := mon.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "ryvm: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var result int64
	if *trace {
		result, err = runTraced(machine)
	} else {
		result, err = machine.Run(context.Background())
	}
	fmt.Print(log.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryvm: %v\n", err)
		os.Exit(1)
	}
	if cfg.VM.TraceOnHalt {
		fmt.Fprintf(os.Stderr, "halted in state %s, PC=0x%x\n", machine.State, machine.Regs[63])
	}

	fmt.Printf("Program result: %d\n", result)
}

// runTraced steps the machine one instruction at a time, printing each
// program-counter value to stderr before it executes.
func runTraced(machine *vm.VM) (int64, error) {
	for machine.State == vm.StateRunning {
		fmt.Fprintf(os.Stderr, "pc=0x%x\n", machine.Regs[63])
		halted, err := machine.Step()
		if err != nil {
			return -1, err
		}
		if halted {
			break
		}
	}
	if machine.State == vm.StateFaulted {
		return -1, nil
	}
	return machine.LastHalt, nil
}
