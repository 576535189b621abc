package isa_test

import (
	"testing"

	"github.com/oconnor-ryan/ryvm-go/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownMnemonics(t *testing.T) {
	cases := map[string]isa.Format{
		"B":    isa.FormatR0,
		"SYS":  isa.FormatR0,
		"LDI":  isa.FormatR1,
		"PCR":  isa.FormatR1,
		"BEQ":  isa.FormatR1,
		"LDA":  isa.FormatR2,
		"STR":  isa.FormatR2,
		"BLR":  isa.FormatR2,
		"ADD":  isa.FormatR3,
		"CPS":  isa.FormatR3,
		"BIC":  isa.FormatR3,
	}
	for name, format := range cases {
		info, ok := isa.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, format, info.Format, name)
		assert.Equal(t, name, info.Name)
	}
}

func TestLookupUnknownMnemonic(t *testing.T) {
	_, ok := isa.Lookup("NOPE")
	assert.False(t, ok)
}

func TestMustInfoRoundTrip(t *testing.T) {
	info, ok := isa.Lookup("ADD")
	require.True(t, ok)

	back, ok := isa.MustInfo(uint8(info.Op))
	require.True(t, ok)
	assert.Equal(t, "ADD", back.Name)
}

func TestMustInfoOutOfRange(t *testing.T) {
	_, ok := isa.MustInfo(255)
	assert.False(t, ok)
}
