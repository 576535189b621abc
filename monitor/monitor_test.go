package monitor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oconnor-ryan/ryvm-go/assembler"
	"github.com/oconnor-ryan/ryvm-go/image"
	"github.com/oconnor-ryan/ryvm-go/monitor"
	"github.com/oconnor-ryan/ryvm-go/resolver"
	"github.com/oconnor-ryan/ryvm-go/vm"
)

func buildVM(t *testing.T) *vm.VM {
	t.Helper()
	src := ".max_stack_size 0\n.text\nLDI W0 5\nSYS 0\n"
	prog, errs := assembler.Parse("test.ryasm", src)
	if errs.HasErrors() {
		t.Fatalf("parse errors: %v", errs.Errors)
	}
	res, errs := resolver.Resolve(prog)
	if errs.HasErrors() {
		t.Fatalf("resolve errors: %v", errs.Errors)
	}
	var buf bytes.Buffer
	if err := image.Write(&buf, res); err != nil {
		t.Fatalf("image.Write failed: %v", err)
	}
	loaded, err := image.Read(&buf)
	if err != nil {
		t.Fatalf("image.Read failed: %v", err)
	}
	return vm.New(loaded, &bytes.Buffer{})
}

func TestRegisterGridShowsAliasesForDedicatedRegisters(t *testing.T) {
	m := buildVM(t)
	grid := monitor.RegisterGrid(&m.Regs)
	for _, alias := range []string{"PC", "SP", "FP", "LR", "SF"} {
		if !strings.Contains(grid, alias) {
			t.Errorf("expected register grid to contain %q, got:\n%s", alias, grid)
		}
	}
}

func TestStatusLineReportsRunningState(t *testing.T) {
	m := buildVM(t)
	line := monitor.StatusLine(m)
	if !strings.Contains(line, "running") {
		t.Errorf("expected status to report running state, got %q", line)
	}
}

func TestStatusLineReflectsHaltAfterStepping(t *testing.T) {
	m := buildVM(t)
	_, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	line := monitor.StatusLine(m)
	if !strings.Contains(line, "halted") {
		t.Errorf("expected status to report halted state, got %q", line)
	}
}
