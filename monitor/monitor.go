// Package monitor is a read-only, single-step viewer wired to `ryvm
// -monitor`. Grounded on the teacher's debugger/tui.go layout style
// (tview panels inside a Flex), shrunk to three panes and no command
// input: the monitor never mutates VM state, it only calls vm.VM.Step
// and redraws.
package monitor

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/oconnor-ryan/ryvm-go/vm"
	"github.com/oconnor-ryan/ryvm-go/wire"
)

// Monitor is a read-only stepper over a VM: one pane for the register
// file, one for the last decoded instruction and SF flags, one for a
// scrolling SYS output log.
type Monitor struct {
	app *tview.Application

	registers *tview.TextView
	status    *tview.TextView
	output    *tview.TextView

	machine *vm.VM
	log     *strings.Builder
}

// New builds a Monitor over m. log must be the same *strings.Builder the
// VM writes to (its Out) so SYS output shows up in the log pane.
func New(m *vm.VM, log *strings.Builder) *Monitor {
	mon := &Monitor{
		app:       tview.NewApplication(),
		registers: tview.NewTextView().SetDynamicColors(true),
		status:    tview.NewTextView().SetDynamicColors(true),
		output:    tview.NewTextView().SetDynamicColors(true).SetScrollable(true),
		machine:   m,
		log:       log,
	}
	mon.registers.SetBorder(true).SetTitle(" Registers ")
	mon.status.SetBorder(true).SetTitle(" Status ")
	mon.output.SetBorder(true).SetTitle(" Output ")

	layout := tview.NewFlex().
		AddItem(mon.registers, 0, 2, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(mon.status, 0, 1, false).
			AddItem(mon.output, 0, 2, false), 0, 3, false)

	mon.app.SetRoot(layout, true)
	mon.app.SetInputCapture(mon.handleKey)
	mon.redraw()
	return mon
}

// Run blocks, driving the tview event loop until the user quits.
func (m *Monitor) Run() error {
	return m.app.Run()
}

func (m *Monitor) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 's':
		m.step()
		return nil
	case 'q':
		m.app.Stop()
		return nil
	}
	return event
}

func (m *Monitor) step() {
	halted, err := m.machine.Step()
	if err != nil {
		fmt.Fprintf(m.log, "\nerror: %v\n", err)
	}
	m.redraw()
	if halted {
		m.status.SetText(m.status.GetText(false) + "\n[yellow]machine halted[-]")
	}
}

func (m *Monitor) redraw() {
	m.registers.SetText(RegisterGrid(&m.machine.Regs))
	m.status.SetText(StatusLine(m.machine))
	m.output.SetText(m.log.String())
}

// RegisterGrid renders all 64 registers, four per row, as hex values.
// Grounded on the teacher's register-pane formatting, generalized from
// 16 32-bit registers to 64 64-bit ones.
func RegisterGrid(regs *[64]uint64) string {
	var sb strings.Builder
	for i := 0; i < 64; i++ {
		sb.WriteString(fmt.Sprintf("%-4s %016x  ", registerAlias(i), regs[i]))
		if i%4 == 3 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func registerAlias(i int) string {
	switch i {
	case wire.RegPC:
		return "PC"
	case wire.RegSP:
		return "SP"
	case wire.RegFP:
		return "FP"
	case wire.RegLR:
		return "LR"
	case wire.RegSF:
		return "SF"
	default:
		return fmt.Sprintf("W%d", i)
	}
}

// StatusLine renders the VM's run state and SF flag bits.
func StatusLine(m *vm.VM) string {
	sf := m.Regs[wire.RegSF]
	return fmt.Sprintf("state: %s\nZ=%d N=%d V=%d\nPC=0x%016x",
		m.State, sf&1, (sf>>1)&1, (sf>>2)&1, m.Regs[wire.RegPC])
}
