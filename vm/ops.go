package vm

import (
	"math"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/isa"
	"github.com/oconnor-ryan/ryvm-go/wire"
)

// execute dispatches one decoded instruction. b holds the raw 4 bytes
// fetched this cycle (b[0] is the opcode, already consumed by the
// caller to select op).
func (m *VM) execute(op isa.Op, b [4]byte) error {
	switch op {
	case isa.OpB:
		off := wire.SignExtend(uint64(b[1])|uint64(b[2])<<8|uint64(b[3])<<16, 3)
		m.setPC(uint64(int64(m.getPC()) + off))

	case isa.OpSYS:
		imm := int64(wire.SignExtend(uint64(b[1])|uint64(b[2])<<8|uint64(b[3])<<16, 3))
		return m.syscall(imm)

	case isa.OpLDI:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		imm := wire.SignExtend(uint64(b[2])|uint64(b[3])<<8, 2)
		m.writeReg(dstIdx, dstWidth, uint64(imm))

	case isa.OpPCR:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		off := wire.SignExtend(uint64(b[2])|uint64(b[3])<<8, 2)
		m.writeReg(dstIdx, dstWidth, uint64(int64(m.getPC())+off))

	case isa.OpBEQ, isa.OpBNE, isa.OpBLT, isa.OpBGT, isa.OpBLE, isa.OpBGE:
		// byte 1 (register) is reserved/unused for the condition
		// branches — only the SF flags and the 16-bit offset matter.
		off := wire.SignExtend(uint64(b[2])|uint64(b[3])<<8, 2)
		if m.condBranch(branchCond(op)) {
			m.setPC(uint64(int64(m.getPC()) + off))
		}

	case isa.OpBR:
		baseIdx, _ := wire.DecodeRegisterOperand(b[1])
		off := wire.SignExtend(uint64(b[2])|uint64(b[3])<<8, 2)
		base := m.readReg(baseIdx, 8)
		m.setPC(uint64(int64(base) + off))

	case isa.OpBL:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		off := wire.SignExtend(uint64(b[2])|uint64(b[3])<<8, 2)
		m.writeReg(dstIdx, dstWidth, m.getPC())
		m.setPC(uint64(int64(m.getPC()) + off))

	case isa.OpCPSI:
		regIdx, regWidth := wire.DecodeRegisterOperand(b[1])
		imm := wire.SignExtend(uint64(b[2])|uint64(b[3])<<8, 2)
		a := m.readRegSigned(regIdx, regWidth)
		result := a - imm
		m.setFlags(result == 0, result < 0, signedSubOverflow(a, imm, result, 64))

	case isa.OpCPUI:
		regIdx, regWidth := wire.DecodeRegisterOperand(b[1])
		imm := uint64(uint16(b[2]) | uint16(b[3])<<8)
		a := m.readReg(regIdx, regWidth)
		m.setFlags(a-imm == 0, false, a < imm)

	case isa.OpLDA:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		baseIdx, _ := wire.DecodeRegisterOperand(b[2])
		off := wire.SignExtend(uint64(b[3]), 1)
		addr := uint64(int64(m.readReg(baseIdx, 8)) + off)
		v, err := m.image.At(addr, int(dstWidth))
		if err != nil {
			return err
		}
		m.writeReg(dstIdx, dstWidth, v)

	case isa.OpSTR:
		srcIdx, srcWidth := wire.DecodeRegisterOperand(b[1])
		baseIdx, _ := wire.DecodeRegisterOperand(b[2])
		off := wire.SignExtend(uint64(b[3]), 1)
		addr := uint64(int64(m.readReg(baseIdx, 8)) + off)
		return m.image.Set(addr, int(srcWidth), m.readReg(srcIdx, srcWidth))

	case isa.OpADDI:
		return m.immOp(b, func(a, imm uint64) uint64 { return a + imm })
	case isa.OpSUBI:
		return m.immOp(b, func(a, imm uint64) uint64 { return a - imm })
	case isa.OpXORI:
		return m.immOp(b, func(a, imm uint64) uint64 { return a ^ imm })

	case isa.OpFXFP:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		srcIdx, srcWidth := wire.DecodeRegisterOperand(b[2])
		signed := b[3]&0x80 != 0
		var f float64
		if signed {
			f = float64(m.readRegSigned(srcIdx, srcWidth))
		} else {
			f = float64(m.readReg(srcIdx, srcWidth))
		}
		m.writeFloat(dstIdx, dstWidth, f)

	case isa.OpFPFX:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		srcIdx, srcWidth := wire.DecodeRegisterOperand(b[2])
		signed := b[3]&0x80 != 0
		f := m.readFloat(srcIdx, srcWidth)
		if signed {
			m.writeReg(dstIdx, dstWidth, uint64(int64(f)))
		} else {
			m.writeReg(dstIdx, dstWidth, uint64(f))
		}

	case isa.OpBLR:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		regIdx, _ := wire.DecodeRegisterOperand(b[2])
		off := wire.SignExtend(uint64(b[3]), 1)
		m.writeReg(dstIdx, dstWidth, m.getPC())
		m.setPC(uint64(int64(m.readReg(regIdx, 8)) + off))

	case isa.OpADD:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a + c })
	case isa.OpSUB:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a - c })
	case isa.OpMULU:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a * c })
	case isa.OpDIVU:
		return m.r3UnsignedDiv(b, false)
	case isa.OpREMU:
		return m.r3UnsignedDiv(b, true)

	case isa.OpMUL:
		return m.r3Signed(b, func(a, c int64) int64 { return a * c })
	case isa.OpDIV:
		return m.r3SignedDiv(b, false)
	case isa.OpREM:
		return m.r3SignedDiv(b, true)

	case isa.OpADDF:
		return m.r3Float(b, func(a, c float64) float64 { return a + c })
	case isa.OpSUBF:
		return m.r3Float(b, func(a, c float64) float64 { return a - c })
	case isa.OpMULF:
		return m.r3Float(b, func(a, c float64) float64 { return a * c })
	case isa.OpDIVF:
		return m.r3Float(b, func(a, c float64) float64 { return a / c })
	case isa.OpREMF:
		return m.r3Float(b, func(a, c float64) float64 { return math.Mod(a, c) })

	case isa.OpAND:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a & c })
	case isa.OpOR:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a | c })
	case isa.OpXOR:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a ^ c })
	case isa.OpSHL:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a << (c & 63) })
	case isa.OpSHR:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a >> (c & 63) })
	case isa.OpBIC:
		return m.r3Unsigned(b, func(a, c uint64) uint64 { return a &^ c })

	case isa.OpCPS:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
		cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
		a := m.readRegSigned(aIdx, aWidth)
		c := m.readRegSigned(cIdx, cWidth)
		result := a - c
		m.setFlags(result == 0, result < 0, signedSubOverflow(a, c, result, 64))
		m.writeReg(dstIdx, dstWidth, uint64(result))

	case isa.OpCPU:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
		cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
		a := m.readReg(aIdx, aWidth)
		c := m.readReg(cIdx, cWidth)
		m.setFlags(a-c == 0, false, a < c)
		m.writeReg(dstIdx, dstWidth, a-c)

	case isa.OpCPF:
		dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
		aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
		cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
		a := m.readFloat(aIdx, aWidth)
		c := m.readFloat(cIdx, cWidth)
		result := a - c
		m.setFlags(result == 0, result < 0, math.IsInf(result, 0))
		m.writeFloat(dstIdx, dstWidth, result)

	default:
		return asmerr.Newf(asmerr.Position{}, asmerr.RuntimeError, "unimplemented opcode %s", op)
	}
	return nil
}

func branchCond(op isa.Op) condition {
	switch op {
	case isa.OpBEQ:
		return condEQ
	case isa.OpBNE:
		return condNE
	case isa.OpBLT:
		return condLT
	case isa.OpBGT:
		return condGT
	case isa.OpBLE:
		return condLE
	default:
		return condGE
	}
}

// immOp implements the ADDI/SUBI/XORI family: dst, a, sign-extended
// 8-bit immediate.
func (m *VM) immOp(b [4]byte, f func(a, imm uint64) uint64) error {
	dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
	aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
	imm := uint64(wire.SignExtend(uint64(b[3]), 1))
	a := m.readReg(aIdx, aWidth)
	m.writeReg(dstIdx, dstWidth, f(a, imm))
	return nil
}

// r3Unsigned implements the zero-extend/compute-mod-2^64/truncate rule
// for R3-format integer ops whose signedness doesn't matter (bitwise,
// ADD/SUB/MULU, shifts).
func (m *VM) r3Unsigned(b [4]byte, f func(a, c uint64) uint64) error {
	dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
	aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
	cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
	a := m.readReg(aIdx, aWidth)
	c := m.readReg(cIdx, cWidth)
	m.writeReg(dstIdx, dstWidth, f(a, c))
	return nil
}

func (m *VM) r3Signed(b [4]byte, f func(a, c int64) int64) error {
	dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
	aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
	cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
	a := m.readRegSigned(aIdx, aWidth)
	c := m.readRegSigned(cIdx, cWidth)
	m.writeReg(dstIdx, dstWidth, uint64(f(a, c)))
	return nil
}

func (m *VM) r3UnsignedDiv(b [4]byte, remainder bool) error {
	dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
	aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
	cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
	a := m.readReg(aIdx, aWidth)
	c := m.readReg(cIdx, cWidth)
	if c == 0 {
		return asmerr.New(asmerr.Position{}, asmerr.RuntimeError, "division by zero")
	}
	if remainder {
		m.writeReg(dstIdx, dstWidth, a%c)
	} else {
		m.writeReg(dstIdx, dstWidth, a/c)
	}
	return nil
}

func (m *VM) r3SignedDiv(b [4]byte, remainder bool) error {
	dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
	aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
	cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
	a := m.readRegSigned(aIdx, aWidth)
	c := m.readRegSigned(cIdx, cWidth)
	if c == 0 {
		return asmerr.New(asmerr.Position{}, asmerr.RuntimeError, "division by zero")
	}
	if remainder {
		m.writeReg(dstIdx, dstWidth, uint64(a%c))
	} else {
		m.writeReg(dstIdx, dstWidth, uint64(a/c))
	}
	return nil
}

func (m *VM) r3Float(b [4]byte, f func(a, c float64) float64) error {
	dstIdx, dstWidth := wire.DecodeRegisterOperand(b[1])
	aIdx, aWidth := wire.DecodeRegisterOperand(b[2])
	cIdx, cWidth := wire.DecodeRegisterOperand(b[3])
	a := m.readFloat(aIdx, aWidth)
	c := m.readFloat(cIdx, cWidth)
	m.writeFloat(dstIdx, dstWidth, f(a, c))
	return nil
}

// readFloat reads a register as an IEEE-754 bit pattern at the
// precision its width selects (spec.md §4.G: >4 bytes ⇒ f64, else f32).
func (m *VM) readFloat(index, width uint8) float64 {
	if width > 4 {
		return math.Float64frombits(m.readReg(index, 8))
	}
	return float64(math.Float32frombits(uint32(m.readReg(index, 4))))
}

func (m *VM) writeFloat(index, width uint8, v float64) {
	if width > 4 {
		m.writeReg(index, 8, math.Float64bits(v))
		return
	}
	m.writeReg(index, 4, uint64(math.Float32bits(float32(v))))
}
