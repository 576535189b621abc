package vm

import "github.com/oconnor-ryan/ryvm-go/wire"

// Flag bit positions inside the SF register (spec.md glossary: N
// negative, V overflow/borrow, Z zero).
const (
	flagZ = 1 << iota
	flagN
	flagV
)

// readReg returns the low width (1, 2, 4 or 8) bytes of register index,
// zero-extended to 64 bits — spec.md §4.G's operand-reading rule.
func (m *VM) readReg(index, width uint8) uint64 {
	mask := widthMask(width)
	return m.Regs[index] & mask
}

// readRegSigned reads a register's low width bytes and sign-extends them.
func (m *VM) readRegSigned(index, width uint8) int64 {
	return wire.SignExtend(m.readReg(index, width), int(width))
}

// writeReg stores value's low width bytes into register index, leaving
// the register's higher-order bytes untouched.
func (m *VM) writeReg(index, width uint8, value uint64) {
	mask := widthMask(width)
	m.Regs[index] = (m.Regs[index] &^ mask) | (value & mask)
}

func widthMask(width uint8) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (width * 8)) - 1
}

func (m *VM) getPC() uint64      { return m.Regs[wire.RegPC] }
func (m *VM) setPC(v uint64)     { m.Regs[wire.RegPC] = v }
func (m *VM) getSP() uint64      { return m.Regs[wire.RegSP] }
func (m *VM) setSP(v uint64)     { m.Regs[wire.RegSP] = v }

// setFlags packs the Z/N/V condition flags into the SF register (index
// 59), spec.md §4.G's comparison semantics.
func (m *VM) setFlags(z, n, v bool) {
	var bits uint64
	if z {
		bits |= flagZ
	}
	if n {
		bits |= flagN
	}
	if v {
		bits |= flagV
	}
	m.Regs[wire.RegSF] = bits
}

func (m *VM) flagZ() bool { return m.Regs[wire.RegSF]&flagZ != 0 }
func (m *VM) flagN() bool { return m.Regs[wire.RegSF]&flagN != 0 }
func (m *VM) flagV() bool { return m.Regs[wire.RegSF]&flagV != 0 }
