// Package resolver implements spec.md §4.D: Pass 2 of the assembler. It
// walks Pass 1's intermediate entry lists, resolves every placeholder
// into either a PC-relative offset or an address-of relocation, and
// produces the byte buffers spec.md §6's image serializer writes out.
package resolver

import (
	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/assembler"
	"github.com/oconnor-ryan/ryvm-go/isa"
	"github.com/oconnor-ryan/ryvm-go/wire"
)

// Relocation is spec.md §3's relocation entry: an image-relative hole and
// the relative address the loader writes into it at load time (used
// unchanged as an arena offset).
type Relocation struct {
	Hole  uint64
	Value uint64
}

// Resolved is Pass 2's output: the final data and text byte buffers
// (in relative-address space, which the loader keeps as arena offsets)
// plus the relocation table.
type Resolved struct {
	MaxStackSize uint64
	Data         []byte
	Text         []byte
	Relocations  []Relocation
}

// Resolve runs Pass 2 over prog. prog must come from a successful
// assembler.Parse (no parse errors, no undefined labels).
func Resolve(prog *assembler.Program) (*Resolved, *asmerr.List) {
	errs := &asmerr.List{}
	r := &Resolved{
		MaxStackSize: prog.MaxStackSize,
		Data:         make([]byte, prog.DataSize),
		Text:         make([]byte, prog.TextSize),
	}

	for _, entry := range prog.Data {
		resolveDataEntry(r, entry, prog.DataSize, errs)
	}
	for _, te := range prog.Text {
		if te.Data != nil {
			resolveDataEntry(r, te.Data, prog.DataSize, errs)
			continue
		}
		resolveInstruction(r, te.Instruction, prog.DataSize, errs)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return r, errs
}

// bufFor returns the byte buffer and in-buffer offset for an entry at
// absolute relative address addr, given the final size of the data
// section (text immediately follows data, spec.md §3).
func bufFor(r *Resolved, addr, dataSize uint64) ([]byte, uint64) {
	if addr < dataSize {
		return r.Data, addr
	}
	return r.Text, addr - dataSize
}

func resolveDataEntry(r *Resolved, e *assembler.DataEntry, dataSize uint64, errs *asmerr.List) {
	buf, off := bufFor(r, e.RelativeAddress, dataSize)

	if e.Placeholder == nil {
		if e.Tag == assembler.DataAsciz {
			copy(buf[off:], e.Text)
			return
		}
		wire.PutIntN(buf[off:], e.Value, e.Tag.ByteWidth())
		return
	}

	switch e.Placeholder.Kind {
	case assembler.PlaceholderAddressOf:
		label := e.Placeholder.Label
		wire.PutIntN(buf[off:], label.RelativeAddress, 8)
		r.Relocations = append(r.Relocations, Relocation{
			Hole:  e.RelativeAddress,
			Value: label.RelativeAddress,
		})

	case assembler.PlaceholderPCRelative:
		bits := e.Tag.ByteWidth() * 8
		if bits != 8 && bits != 16 {
			errs.Add(asmerr.Newf(e.Placeholder.Pos, asmerr.ResolveError,
				"PC-relative data slot referencing %q needs an explicit 8- or 16-bit width (got %d bits)",
				e.Placeholder.Label.Name, bits))
			return
		}
		pcAfter := e.RelativeAddress + 4
		offset := int64(e.Placeholder.Label.RelativeAddress) - int64(pcAfter)
		if !wire.FitsSigned(offset, bits) {
			errs.Add(asmerr.Newf(e.Placeholder.Pos, asmerr.ResolveError,
				"PC-relative offset to %q (%d) does not fit in %d bits",
				e.Placeholder.Label.Name, offset, bits))
			return
		}
		enc, _ := wire.EncodeSigned(offset, bits)
		copy(buf[off:], enc)
	}
}

func resolveInstruction(r *Resolved, inst *assembler.Instruction, dataSize uint64, errs *asmerr.List) {
	buf, off := bufFor(r, inst.RelativeAddress, dataSize)

	if inst.Placeholder != nil {
		bits := inst.Placeholder.Width
		pcAfter := inst.RelativeAddress + 4
		offset := int64(inst.Placeholder.Label.RelativeAddress) - int64(pcAfter)
		if !wire.FitsSigned(offset, bits) {
			errs.Add(asmerr.Newf(inst.Placeholder.Pos, asmerr.ResolveError,
				"PC-relative offset to %q (%d) does not fit in %d bits",
				inst.Placeholder.Label.Name, offset, bits))
			return
		}
		enc, _ := wire.EncodeSigned(offset, bits)
		switch inst.Format {
		case isa.FormatR0:
			copy(inst.Bytes[1:4], enc)
		case isa.FormatR1:
			copy(inst.Bytes[2:4], enc)
		case isa.FormatR2:
			inst.Bytes[3] = enc[0]
		}
	}

	copy(buf[off:off+4], inst.Bytes[:])
}
