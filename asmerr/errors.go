// Package asmerr collects the diagnostics shared by every stage of the
// RyVM toolchain: lexing, parsing, resolution, image I/O and the VM.
package asmerr

import (
	"fmt"
	"strings"
)

// Position locates a token or error inside a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Kind categorizes a diagnostic, matching spec.md's error-kind taxonomy.
type Kind int

const (
	LexError Kind = iota
	ParseError
	ResolveError
	AllocError
	IoError
	ImageError
	RuntimeError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case ResolveError:
		return "resolve error"
	case AllocError:
		return "alloc error"
	case IoError:
		return "io error"
	case ImageError:
		return "image error"
	case RuntimeError:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is a single diagnostic. Assembly-time errors carry a source
// Position; runtime errors (produced after the image is loaded, with no
// source text left to point at) leave Pos zeroed.
type Error struct {
	Pos     Position
	Kind    Kind
	Message string
}

func New(pos Position, kind Kind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

func Newf(pos Position, kind Kind, format string, args ...any) *Error {
	return New(pos, kind, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e.Pos.File == "" && e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

// List collects diagnostics produced while assembling a single file.
// The lexer and Pass 1 parser share one List so that Pass 1's
// end-of-pass undefined-label sweep can report alongside lex errors.
type List struct {
	Errors []*Error
}

func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *List) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// First returns the first recorded error, or nil if the list is empty.
func (l *List) First() *Error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l.Errors[0]
}
