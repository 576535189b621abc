package lexer_test

import (
	"testing"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]lexer.Token, *asmerr.List) {
	t.Helper()
	var errs asmerr.List
	l := lexer.New(src, "t.ryasm", &errs)
	var toks []lexer.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == lexer.TokEOF {
			break
		}
	}
	return toks, &errs
}

func TestLexDirectivesAndSections(t *testing.T) {
	toks, errs := scanAll(t, ".max_stack_size 64\n.data\n.text\n")
	require.False(t, errs.HasErrors())

	require.Equal(t, lexer.TokSectionMaxStackSize, toks[0].Kind)
	require.Equal(t, lexer.TokIntLiteral, toks[1].Kind)
	assert.EqualValues(t, 64, toks[1].IntVal)
	require.Equal(t, lexer.TokLF, toks[2].Kind)
	require.Equal(t, lexer.TokSectionData, toks[3].Kind)
	require.Equal(t, lexer.TokSectionText, toks[5].Kind)
}

func TestLexRegisterShortcuts(t *testing.T) {
	toks, errs := scanAll(t, "PC SP FP LR SF")
	require.False(t, errs.HasErrors())

	want := []lexer.Register{
		{Index: 63, Width: 8},
		{Index: 62, Width: 8},
		{Index: 61, Width: 8},
		{Index: 60, Width: 8},
		{Index: 59, Width: 8},
	}
	for i, w := range want {
		require.Equal(t, lexer.TokRegister, toks[i].Kind)
		assert.Equal(t, w, toks[i].Reg)
	}
}

func TestLexWidthRegisters(t *testing.T) {
	toks, errs := scanAll(t, "E0 Q1 H12 W63")
	require.False(t, errs.HasErrors())

	want := []lexer.Register{
		{Index: 0, Width: 1},
		{Index: 1, Width: 2},
		{Index: 12, Width: 4},
		{Index: 63, Width: 8},
	}
	for i, w := range want {
		require.Equal(t, lexer.TokRegister, toks[i].Kind)
		assert.Equal(t, w, toks[i].Reg)
	}
}

func TestLexOversizedRegisterIndexIsLexError(t *testing.T) {
	// W64 is not a valid register (index must be <= 63) and is not a
	// known opcode either, so it must be a fatal lex error.
	_, errs := scanAll(t, "W64")
	require.True(t, errs.HasErrors())
	assert.Equal(t, asmerr.LexError, errs.First().Kind)
}

func TestLexLabelDefinitionAndReferences(t *testing.T) {
	toks, errs := scanAll(t, ":loop #loop @loop")
	require.False(t, errs.HasErrors())

	require.Equal(t, lexer.TokLabel, toks[0].Kind)
	assert.Equal(t, "loop", toks[0].Literal)
	require.Equal(t, lexer.TokLabelPcOffExpr, toks[1].Kind)
	assert.Equal(t, "loop", toks[1].Literal)
	require.Equal(t, lexer.TokLabelAdrOfExpr, toks[2].Kind)
	assert.Equal(t, "loop", toks[2].Literal)
}

func TestLexNegativeAndPositiveIntegers(t *testing.T) {
	toks, errs := scanAll(t, "-3 5")
	require.False(t, errs.HasErrors())

	require.Equal(t, lexer.TokIntLiteral, toks[0].Kind)
	assert.EqualValues(t, -3, toks[0].IntVal)
	require.Equal(t, lexer.TokIntLiteral, toks[1].Kind)
	assert.EqualValues(t, 5, toks[1].IntVal)
}

func TestLexStringLiteralWithEscape(t *testing.T) {
	toks, errs := scanAll(t, `"hi\n"`)
	require.False(t, errs.HasErrors())
	require.Equal(t, lexer.TokStringLiteral, toks[0].Kind)
	assert.Equal(t, `hi\n`, toks[0].Literal)
}

func TestLexUnterminatedStringIsFatal(t *testing.T) {
	_, errs := scanAll(t, `"never closed`)
	require.True(t, errs.HasErrors())
	assert.Equal(t, asmerr.LexError, errs.First().Kind)
}

func TestLexCommentsAreSkipped(t *testing.T) {
	toks, errs := scanAll(t, "ADD W0 W0 W1 ; comment here\nSYS 0\n")
	require.False(t, errs.HasErrors())
	require.Equal(t, lexer.TokOpcode, toks[0].Kind)
	assert.Equal(t, "ADD", toks[0].Literal)
}

func TestLexOpcodeCaseInsensitive(t *testing.T) {
	toks, errs := scanAll(t, "add")
	require.False(t, errs.HasErrors())
	require.Equal(t, lexer.TokOpcode, toks[0].Kind)
	assert.Equal(t, "ADD", toks[0].Literal)
}

func TestLexPushback(t *testing.T) {
	var errs asmerr.List
	l := lexer.New("W0 W1", "t.ryasm", &errs)
	first := l.Next()
	l.Push(first)
	again := l.Next()
	assert.Equal(t, first, again)
	second := l.Next()
	assert.Equal(t, "W1", second.Literal)
}

func TestLexUnknownDirectiveIsFatal(t *testing.T) {
	_, errs := scanAll(t, ".bogus")
	require.True(t, errs.HasErrors())
	assert.Equal(t, asmerr.LexError, errs.First().Kind)
}
