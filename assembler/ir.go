package assembler

import (
	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/isa"
)

// PlaceholderKind distinguishes a PC-relative reference from an
// address-of reference (spec.md §3).
type PlaceholderKind int

const (
	PlaceholderPCRelative PlaceholderKind = iota
	PlaceholderAddressOf
)

// Placeholder is an unresolved label reference attached to a pending
// data or instruction slot, resolved by the resolver package in Pass 2.
type Placeholder struct {
	Label *Label
	Kind  PlaceholderKind
	// Width is the slot's resolved-value width in bits: 24/16/8 for
	// PC-relative instruction operands (by format), the entry's own width
	// for PC-relative data entries (the resolver accepts only 8 and 16),
	// and always 64 for address-of placeholders.
	Width int
	Pos   asmerr.Position
}

// DataTag identifies the width (or variable-length string) of a data
// entry, per spec.md §3.
type DataTag int

const (
	DataByte DataTag = iota
	Data2Byte
	Data4Byte
	Data8Byte
	DataAsciz
)

// ByteWidth returns the entry's fixed width, or -1 for DataAsciz (whose
// width depends on the string length and is carried on the entry itself).
func (t DataTag) ByteWidth() int {
	switch t {
	case DataByte:
		return 1
	case Data2Byte:
		return 2
	case Data4Byte:
		return 4
	case Data8Byte:
		return 8
	default:
		return -1
	}
}

// DataEntry is spec.md §3's tagged data value, used in both .data and
// .text. Exactly one of Value/Placeholder/Text is meaningful, selected by
// Tag and whether Placeholder is non-nil.
type DataEntry struct {
	Tag             DataTag
	RelativeAddress uint64

	// Value holds the raw bit pattern for a numeric literal entry (Tag !=
	// DataAsciz, Placeholder == nil). Only the low ByteWidth() bytes are
	// meaningful.
	Value uint64

	// Text holds the NUL-terminated string bytes for a DataAsciz entry.
	Text []byte

	// Placeholder is non-nil when this entry's value is a `#label` or
	// `@label` reference instead of a literal.
	Placeholder *Placeholder

	Pos asmerr.Position
}

// Width returns the number of bytes this entry occupies in the image.
func (e *DataEntry) Width() uint64 {
	if e.Tag == DataAsciz {
		return uint64(len(e.Text))
	}
	return uint64(e.Tag.ByteWidth())
}

// Instruction is a parsed 4-byte instruction slot. The opcode byte and
// any already-known operand bytes are filled in by Pass 1; a non-nil
// Placeholder means one operand slot still needs Pass 2 to compute an
// offset and patch Bytes.
type Instruction struct {
	Op              isa.Op
	Format          isa.Format
	RelativeAddress uint64
	Bytes           [4]byte
	Placeholder     *Placeholder
	Pos             asmerr.Position
}

// TextEntry is one ordered slot inside the .text section: either an
// instruction or a literal data entry interleaved between instructions
// (spec.md §3's "4-byte instructions interleaved with optional literal
// data entries inside .text").
type TextEntry struct {
	Instruction *Instruction
	Data        *DataEntry
}

func (e TextEntry) RelativeAddress() uint64 {
	if e.Instruction != nil {
		return e.Instruction.RelativeAddress
	}
	return e.Data.RelativeAddress
}

func (e TextEntry) Width() uint64 {
	if e.Instruction != nil {
		return 4
	}
	return e.Data.Width()
}

// Program is Pass 1's output: the intermediate list of data and
// instruction entries, plus the symbol table they reference.
type Program struct {
	MaxStackSize uint64
	// MaxStackSizeSet reports whether the source gave an explicit
	// .max_stack_size directive; when false the caller (cmd/ryasm) is
	// expected to substitute a configured default before resolving.
	MaxStackSizeSet bool
	Data            []*DataEntry
	Text            []TextEntry
	Symbols         *SymbolTable

	// DataSize and TextSize are the final sizes of each section, equal to
	// the running relative address at the end of each section.
	DataSize uint64
	TextSize uint64
}
