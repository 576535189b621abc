package asmerr_test

import (
	"testing"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	pos := asmerr.Position{File: "prog.ryasm", Line: 4, Column: 9}
	err := asmerr.New(pos, asmerr.ResolveError, "undefined label \"loop\"")

	assert.Equal(t, "prog.ryasm:4:9: resolve error: undefined label \"loop\"", err.Error())
}

func TestErrorFormattingNoPosition(t *testing.T) {
	err := asmerr.New(asmerr.Position{}, asmerr.RuntimeError, "division by zero")
	assert.Equal(t, "runtime error: division by zero", err.Error())
}

func TestListHasErrors(t *testing.T) {
	var l asmerr.List
	assert.False(t, l.HasErrors())

	l.Add(asmerr.New(asmerr.Position{Line: 1, Column: 1}, asmerr.LexError, "bad sigil"))
	require.True(t, l.HasErrors())
	assert.Equal(t, "bad sigil", l.First().Message)
}

func TestListErrorJoinsMessages(t *testing.T) {
	var l asmerr.List
	l.Add(asmerr.New(asmerr.Position{File: "a.ryasm", Line: 1, Column: 1}, asmerr.ParseError, "first"))
	l.Add(asmerr.New(asmerr.Position{File: "a.ryasm", Line: 2, Column: 1}, asmerr.ParseError, "second"))

	got := l.Error()
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
}
