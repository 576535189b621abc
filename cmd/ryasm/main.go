// Command ryasm assembles RyVM source into a binary image. Grounded on
// the teacher's main.go flag-based style, shrunk to one job.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/oconnor-ryan/ryvm-go/assembler"
	"github.com/oconnor-ryan/ryvm-go/config"
	"github.com/oconnor-ryan/ryvm-go/image"
	"github.com/oconnor-ryan/ryvm-go/resolver"
	"github.com/oconnor-ryan/ryvm-go/tools"
)

func main() {
	var (
		dumpSymbols = flag.Bool("dump-symbols", false, "print a symbol cross-reference and exit")
		fmtListing  = flag.Bool("fmt", false, "print a reformatted listing and exit")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: ryasm [-dump-symbols] [-fmt] <input.ryasm> <output.ryc>")
		os.Exit(1)
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryasm: %v\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(inputPath) // #nosec G304 -- CLI-provided input path
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryasm: %v\n", err)
		os.Exit(1)
	}

	if *fmtListing {
		out, err := tools.FormatListing(string(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ryasm: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	prog, errs := assembler.Parse(inputPath, string(src))
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(1)
	}

	if *dumpSymbols {
		fmt.Print(tools.SymbolReport(prog.Symbols))
		return
	}

	if cfg.Assembler.WarnUnusedLabels {
		for _, label := range prog.Symbols.All() {
			if label.HasAddress && !label.Referenced() {
				fmt.Fprintf(os.Stderr, "ryasm: warning: label %q defined but never referenced\n", label.Name)
			}
		}
	}

	if !prog.MaxStackSizeSet {
		prog.MaxStackSize = cfg.Assembler.DefaultMaxStackSize
	}

	res, errs := resolver.Resolve(prog)
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(1)
	}

	out, err := os.Create(outputPath) // #nosec G304 -- CLI-provided output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "ryasm: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := image.Write(out, res); err != nil {
		fmt.Fprintf(os.Stderr, "ryasm: %v\n", err)
		os.Exit(1)
	}
}
