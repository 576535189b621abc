// Package wire holds the little-endian byte/integer helpers shared by the
// assembler, resolver, image and vm packages, grounded on the original
// source's src/helper.c sign-extension and register-index helpers.
package wire

import "fmt"

// PutIntN writes the low n bytes of v (n in {1,2,3,4,8}) into dst
// little-endian. dst must have length >= n.
func PutIntN(dst []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

// GetUintN reads n little-endian bytes (n in {1,2,3,4,8}) from src as an
// unsigned value.
func GetUintN(src []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(src[i]) << (8 * i)
	}
	return v
}

// SignExtend sign-extends the low n*8 bits of v (read from an n-byte
// little-endian field) to a full int64.
func SignExtend(v uint64, n int) int64 {
	bits := uint(n * 8)
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// FitsSigned reports whether v fits in a signed field of bits width.
func FitsSigned(v int64, bits int) bool {
	min := -(int64(1) << (bits - 1))
	max := (int64(1) << (bits - 1)) - 1
	return v >= min && v <= max
}

// EncodeSigned encodes a signed value known to fit within bits (a
// multiple of 8) into n = bits/8 little-endian bytes. It returns an error
// if the value does not fit, so callers can surface a ResolveError.
func EncodeSigned(v int64, bits int) ([]byte, error) {
	if !FitsSigned(v, bits) {
		return nil, fmt.Errorf("value %d does not fit in signed %d-bit field", v, bits)
	}
	n := bits / 8
	out := make([]byte, n)
	PutIntN(out, uint64(v), n)
	return out, nil
}

// DecodeSigned reads n little-endian bytes from src and sign-extends them.
func DecodeSigned(src []byte, n int) int64 {
	return SignExtend(GetUintN(src, n), n)
}

// Register shortcut indices, per spec.md §3.
const (
	RegPC = 63
	RegSP = 62
	RegFP = 61
	RegLR = 60
	RegSF = 59
)

// EncodeRegisterOperand packs a register operand byte: high 2 bits select
// access width (0,1,2,3 => 1,2,4,8 bytes), low 6 bits select the index.
func EncodeRegisterOperand(index uint8, width uint8) byte {
	return widthCode(width)<<6 | (index & 0x3F)
}

// DecodeRegisterOperand unpacks a register operand byte.
func DecodeRegisterOperand(b byte) (index uint8, width uint8) {
	code := b >> 6
	return b & 0x3F, 1 << code
}

func widthCode(width uint8) byte {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		return 3
	}
}
