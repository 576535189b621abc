// Package tools holds listing helpers wired to ryasm's -dump-symbols and
// -fmt flags. Grounded on the teacher's tools/xref.go and tools/format.go,
// shrunk to operate on the already-built assembler.SymbolTable and token
// stream instead of re-deriving a separate symbol model.
package tools

import (
	"fmt"
	"strings"

	"github.com/oconnor-ryan/ryvm-go/assembler"
)

// SymbolReport renders a cross-reference dump of every label in table:
// name, relative address (or "(undefined)"), and whether it is referenced;
// neither the number nor the locations of references are listed. The
// RyVM analogue of the teacher's ARM symbol xref, reduced to what
// assembler.SymbolTable actually tracks (RyVM has no .equ constants).
func SymbolReport(table *assembler.SymbolTable) string {
	var sb strings.Builder
	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")

	labels := table.All()
	defined, undefined, unreferenced := 0, 0, 0

	for _, l := range labels {
		sb.WriteString(fmt.Sprintf("%-30s", l.Name))
		if l.HasAddress {
			sb.WriteString(fmt.Sprintf(" addr=0x%08x", l.RelativeAddress))
			defined++
		} else {
			sb.WriteString(" (undefined)")
			undefined++
		}
		if l.Referenced() {
			sb.WriteString(" [referenced]")
		} else {
			sb.WriteString(" [unreferenced]")
			unreferenced++
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nSummary\n")
	sb.WriteString("=======\n")
	sb.WriteString(fmt.Sprintf("Total symbols: %d\n", len(labels)))
	sb.WriteString(fmt.Sprintf("Defined:       %d\n", defined))
	sb.WriteString(fmt.Sprintf("Undefined:     %d\n", undefined))
	sb.WriteString(fmt.Sprintf("Unreferenced:  %d\n", unreferenced))

	return sb.String()
}
