// Command ry assembles RyVM source and immediately runs it, skipping
// the intermediate .ryc file round-trip. Grounded on the teacher's
// main.go flag-based style.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/oconnor-ryan/ryvm-go/assembler"
	"github.com/oconnor-ryan/ryvm-go/image"
	"github.com/oconnor-ryan/ryvm-go/resolver"
	"github.com/oconnor-ryan/ryvm-go/vm"
)

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: ry <input.ryasm> <output.ryc>")
		os.Exit(1)
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	src, err := os.ReadFile(inputPath) // #nosec G304 -- CLI-provided input path
	if err != nil {
		fmt.Fprintf(os.Stderr, "ry: %v\n", err)
		os.Exit(1)
	}

	prog, errs := assembler.Parse(inputPath, string(src))
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(1)
	}

	res, errs := resolver.Resolve(prog)
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(1)
	}

	var wire bytes.Buffer
	if err := image.Write(&wire, res); err != nil {
		fmt.Fprintf(os.Stderr, "ry: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, wire.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ry: %v\n", err)
		os.Exit(1)
	}

	loaded, err := image.Read(bytes.NewReader(wire.Bytes()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ry: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New(loaded, os.Stdout)
	result, err := machine.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ry: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Program result: %d\n", result)
}
