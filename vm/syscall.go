package vm

import (
	"fmt"
	"math"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/isa"
)

// syscall dispatches spec.md §4.G's fixed SYS table. Grounded on the
// teacher's syscall.go dispatch style, shrunk to RyVM's five numbers.
func (m *VM) syscall(number int64) error {
	switch number {
	case isa.SysHalt:
		m.LastHalt = int64(m.readReg(0, 8))
		m.State = StateHalted
		return nil

	case isa.SysPrintInt:
		v := int64(m.readReg(1, 8))
		if m.PrintFormat == "hex" {
			fmt.Fprintf(m.Out, "0x%x", uint64(v))
		} else {
			fmt.Fprintf(m.Out, "%d", v)
		}
		return nil

	case isa.SysPrintF64:
		v := math.Float64frombits(m.readReg(1, 8))
		fmt.Fprintf(m.Out, "%f", v)
		return nil

	case isa.SysPrintCStr:
		addr := m.readReg(1, 8)
		return m.printCString(addr)

	case isa.SysPrintF32:
		v := math.Float32frombits(uint32(m.readReg(1, 4)))
		fmt.Fprintf(m.Out, "%f", float64(v))
		return nil

	default:
		m.State = StateFaulted
		fmt.Fprintf(m.Out, "bad syscall %d\n", number)
		m.LastHalt = -1
		return asmerr.Newf(asmerr.Position{}, asmerr.RuntimeError, "bad syscall number %d", number)
	}
}

func (m *VM) printCString(addr uint64) error {
	for {
		b, err := m.image.At(addr, 1)
		if err != nil {
			return err
		}
		if b == 0 {
			return nil
		}
		fmt.Fprintf(m.Out, "%c", byte(b))
		addr++
	}
}
