package tools

import (
	"fmt"
	"strings"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/lexer"
)

// mnemonicColumn is where the opcode/directive starts, with or without a
// label at the line's head (a label of 8 or more characters pushes it to
// one space after the label).
const mnemonicColumn = 8

// FormatListing re-lexes src and re-emits it with aligned label and
// mnemonic columns, the RyVM analogue of the teacher's ARM formatter
// (tools/format.go). Unlike the teacher's AST-driven formatter, RyVM's
// parser IR drops source text once Pass 1 finishes, so this works
// directly off the token stream instead of a re-parsed AST.
func FormatListing(src string) (string, error) {
	errs := &asmerr.List{}
	lx := lexer.New(src, "listing", errs)

	var out strings.Builder
	var line []lexer.Token

	flush := func() {
		if len(line) == 0 {
			return
		}
		out.WriteString(formatLine(line))
		out.WriteString("\n")
		line = line[:0]
	}

	for {
		tok := lx.Next()
		if lx.Failed() {
			return "", fmt.Errorf("format: %s", errs.Error())
		}
		if tok.Kind == lexer.TokEOF {
			flush()
			break
		}
		if tok.Kind == lexer.TokLF {
			flush()
			continue
		}
		line = append(line, tok)
	}

	return out.String(), nil
}

func formatLine(toks []lexer.Token) string {
	var sb strings.Builder
	i := 0

	if toks[0].Kind == lexer.TokLabel {
		sb.WriteString(":")
		sb.WriteString(toks[0].Literal)
		i = 1
		if i == len(toks) {
			return sb.String()
		}
	}

	padTo(&sb, mnemonicColumn)

	rest := make([]string, 0, len(toks)-i)
	for ; i < len(toks); i++ {
		rest = append(rest, renderToken(toks[i]))
	}
	sb.WriteString(strings.Join(rest, " "))

	return sb.String()
}

func padTo(sb *strings.Builder, column int) {
	if sb.Len() >= column {
		sb.WriteString(" ")
		return
	}
	sb.WriteString(strings.Repeat(" ", column-sb.Len()))
}

func renderToken(t lexer.Token) string {
	switch t.Kind {
	case lexer.TokLabelPcOffExpr:
		return "#" + t.Literal
	case lexer.TokLabelAdrOfExpr:
		return "@" + t.Literal
	case lexer.TokStringLiteral:
		// The lexer keeps escapes as raw source text, so re-quoting it
		// verbatim reproduces the original literal.
		return `"` + t.Literal + `"`
	case lexer.TokIntLiteral, lexer.TokFloatLiteral:
		return t.Literal
	default:
		return t.Literal
	}
}
