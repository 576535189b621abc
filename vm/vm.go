// Package vm implements spec.md §4.G: the RyVM interpreter core. It is
// grounded on the teacher's CPU/flags/executor/syscall shape
// (vm/cpu.go, vm/flags.go, vm/executor.go, vm/syscall.go), generalized
// from ARM2's 16x32-bit register file to RyVM's 64x64-bit width-tagged
// one, and from ARM condition codes to RyVM's Z/N/V branch conditions.
package vm

import (
	"context"
	"io"
	"os"

	"github.com/oconnor-ryan/ryvm-go/asmerr"
	"github.com/oconnor-ryan/ryvm-go/image"
	"github.com/oconnor-ryan/ryvm-go/isa"
	"github.com/oconnor-ryan/ryvm-go/wire"
)

// State is the VM's coarse execution state (spec.md §4.G's state machine).
type State int

const (
	StateRunning State = iota
	StateHalted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return "?"
	}
}

// VM is one execution of a loaded image. It owns the 64-register file,
// the run state and halt value, and the image's arena/stack.
type VM struct {
	Regs  [64]uint64
	State State
	Out   io.Writer

	// PrintFormat controls how SYS 1 (print int) renders its argument:
	// "dec" (default) or "hex". Set from config.Config.VM.PrintFormat by
	// the CLI; the VM itself only ever reads it.
	PrintFormat string

	image *image.Loaded

	// LastHalt is register 0's value at the moment the machine halted
	// cleanly, returned by Run.
	LastHalt int64
}

// New loads img and sets up the initial register state of spec.md
// §4.G's Initialization step: PC at the first text byte, SP and FP at
// the top of the stack arena, SF cleared.
func New(img *image.Loaded, out io.Writer) *VM {
	if out == nil {
		out = os.Stdout
	}
	m := &VM{image: img, Out: out, State: StateRunning, PrintFormat: "dec"}
	m.setPC(img.EntryPoint())
	stackTop := img.StackTop()
	m.setSP(stackTop)
	m.Regs[wire.RegFP] = stackTop
	m.Regs[wire.RegSF] = 0
	return m
}

// Step executes exactly one fetch/decode/execute cycle. halted reports
// whether this instruction transitioned the VM out of StateRunning.
func (m *VM) Step() (halted bool, err error) {
	if m.State != StateRunning {
		return true, nil
	}

	pc := m.getPC()
	raw, err := m.image.At(pc, 4)
	if err != nil {
		m.State = StateFaulted
		return true, err
	}
	var bytes [4]byte
	wire.PutIntN(bytes[:], raw, 4)
	m.setPC(pc + 4)

	info, ok := isa.MustInfo(bytes[0])
	if !ok {
		m.State = StateFaulted
		return true, asmerr.Newf(asmerr.Position{}, asmerr.RuntimeError,
			"invalid opcode 0x%02x at address 0x%x", bytes[0], pc)
	}

	if err := m.execute(info.Op, bytes); err != nil {
		m.State = StateFaulted
		return true, err
	}

	return m.State != StateRunning, nil
}

// Run steps the machine until it halts, faults, or ctx is cancelled. On
// a clean halt it returns register 0's signed value, per spec.md §4.G.
func (m *VM) Run(ctx context.Context) (int64, error) {
	for {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		default:
		}

		halted, err := m.Step()
		if err != nil {
			return -1, err
		}
		if halted {
			if m.State == StateFaulted {
				return -1, nil
			}
			return m.LastHalt, nil
		}
	}
}
