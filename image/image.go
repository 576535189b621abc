// Package image implements spec.md §4.E/§4.F: the binary image
// serializer and loader. The wire format is spec.md §6's exact byte
// layout; the loader applies the arena+index redesign of spec.md §9
// instead of the original's raw host-pointer relocation.
package image

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/resolver"
	"github.com/oconnor-ryan/ryvm-go/wire"
)

// Magic is the two-byte header every image begins with.
var Magic = [2]byte{'R', 'Y'}

// Write serializes res to w in spec.md §6's layout.
func Write(w io.Writer, res *resolver.Resolved) error {
	var buf bytes.Buffer
	buf.Write(Magic[:])

	var u64 [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(u64[:], v)
		buf.Write(u64[:])
	}

	putU64(res.MaxStackSize)
	putU64(uint64(len(res.Data)))
	buf.Write(res.Data)
	putU64(uint64(len(res.Text)))
	buf.Write(res.Text)
	putU64(uint64(len(res.Relocations)))
	for _, rel := range res.Relocations {
		putU64(rel.Hole)
		putU64(rel.Value)
	}

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return asmerr.Newf(asmerr.Position{}, asmerr.IoError, "writing image: %s", err)
	}
	return nil
}

// Loaded is a loaded image ready for the VM: a single owned arena
// holding data, immediately followed by text, immediately followed by
// the stack (spec.md §3's address space, extended so SP/FP-based
// LDA/STR land in the same addressable index space as everything
// else). Addresses into Arena are arena-relative offsets, never host
// pointers — the VM's LDA/STR reach memory exclusively through Arena's
// bounds-checked accessors.
type Loaded struct {
	MaxStackSize uint64
	Arena        []byte
	DataSize     uint64
	TextSize     uint64
}

// EntryPoint is the relative address of the first text-section byte,
// where the VM's PC starts.
func (l *Loaded) EntryPoint() uint64 {
	return l.DataSize
}

// StackTop is the relative address one past the last valid stack byte,
// where the VM's initial SP and FP are set (the stack grows down from
// here, per spec.md §4.G).
func (l *Loaded) StackTop() uint64 {
	return uint64(len(l.Arena))
}

// Read parses a binary image from r, allocates the data+text+stack
// arena, and applies every relocation. Relocation values are already
// arena-relative
// (spec.md §9's redesign) so applying one is a plain 8-byte store into
// the arena, never pointer arithmetic against a host base.
func Read(r io.Reader) (*Loaded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, asmerr.Newf(asmerr.Position{}, asmerr.IoError, "reading image: %s", err)
	}

	const headerLen = 2 + 8 + 8
	if len(data) < headerLen || data[0] != Magic[0] || data[1] != Magic[1] {
		return nil, asmerr.New(asmerr.Position{}, asmerr.ImageError, "bad magic: not a RyVM image")
	}

	maxStackSize := wire.GetUintN(data[2:10], 8)
	dataLength := wire.GetUintN(data[10:18], 8)

	off := uint64(18)
	if off+dataLength > uint64(len(data)) {
		return nil, asmerr.New(asmerr.Position{}, asmerr.ImageError, "truncated image: data section")
	}
	dataBytes := data[off : off+dataLength]
	off += dataLength

	if off+8 > uint64(len(data)) {
		return nil, asmerr.New(asmerr.Position{}, asmerr.ImageError, "truncated image: missing text_length")
	}
	textLength := wire.GetUintN(data[off:off+8], 8)
	off += 8

	if off+textLength > uint64(len(data)) {
		return nil, asmerr.New(asmerr.Position{}, asmerr.ImageError, "truncated image: text section")
	}
	textBytes := data[off : off+textLength]
	off += textLength

	if off+8 > uint64(len(data)) {
		return nil, asmerr.New(asmerr.Position{}, asmerr.ImageError, "truncated image: missing reloc_count")
	}
	relocCount := wire.GetUintN(data[off:off+8], 8)
	off += 8

	// The arena spans data+text+stack so a stack-relative LDA/STR is
	// bounds-checked by the same accessor as everything else; the stack
	// region starts zeroed, which is all it ever needs at load time.
	arena := make([]byte, dataLength+textLength+maxStackSize)
	copy(arena, dataBytes)
	copy(arena[dataLength:], textBytes)

	for i := uint64(0); i < relocCount; i++ {
		if off+16 > uint64(len(data)) {
			return nil, asmerr.New(asmerr.Position{}, asmerr.ImageError, "truncated image: relocation table")
		}
		hole := wire.GetUintN(data[off:off+8], 8)
		value := wire.GetUintN(data[off+8:off+16], 8)
		off += 16

		if hole+8 > uint64(len(arena)) {
			return nil, asmerr.Newf(asmerr.Position{}, asmerr.ImageError, "relocation hole 0x%x out of bounds", hole)
		}
		wire.PutIntN(arena[hole:], value, 8)
	}

	return &Loaded{
		MaxStackSize: maxStackSize,
		Arena:        arena,
		DataSize:     dataLength,
		TextSize:     textLength,
	}, nil
}

// At reads a width-byte (1, 2, 4 or 8) little-endian unsigned value from
// the arena at addr. It is the only path the VM uses to dereference a
// relative address; an out-of-range addr always fails instead of
// touching host memory.
func (l *Loaded) At(addr uint64, width int) (uint64, error) {
	if width <= 0 || addr+uint64(width) > uint64(len(l.Arena)) {
		return 0, asmerr.Newf(asmerr.Position{}, asmerr.RuntimeError,
			"out-of-bounds read at address 0x%x (width %d)", addr, width)
	}
	return wire.GetUintN(l.Arena[addr:], width), nil
}

// Set writes a width-byte little-endian value into the arena at addr.
func (l *Loaded) Set(addr uint64, width int, value uint64) error {
	if width <= 0 || addr+uint64(width) > uint64(len(l.Arena)) {
		return asmerr.Newf(asmerr.Position{}, asmerr.RuntimeError,
			"out-of-bounds write at address 0x%x (width %d)", addr, width)
	}
	wire.PutIntN(l.Arena[addr:], value, width)
	return nil
}
