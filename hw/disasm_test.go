package hw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDisasmProgram(t *testing.T) {
	prg := program(0x00E0, 0x6A02, 0xD125, 0xF165, 0x0123, 0xB200, 0x2ABC)
	prg = append(prg, 0xAB)

	var buf bytes.Buffer
	if err := DisasmProgram(&buf, prg, ProgramStart); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"0200  00E0  CLS",
		"0202  6A02  LD    VA, #02",
		"0204  D125  DRW   V1, V2, 5",
		"0206  F165  LD    V1, [I]",
		"0208  0123  DW    #0123",
		"020A  B200  JP    V0, #200",
		"020C  2ABC  CALL  #ABC",
		"020E  AB00  LD    I, #B00",
	}
	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestDisasmNoSideEffect(t *testing.T) {
	m := newTestMachine(t, DefaultPlatform(), 0xF00A)
	before := cloneMachine(m)

	d := m.Disasm(ProgramStart)
	if d.Opcode != "LD" || d.Oper != "V0, K" {
		t.Errorf("got %q %q, want %q %q", d.Opcode, d.Oper, "LD", "V0, K")
	}
	if diff := diffMachines(before, m); diff != "" {
		t.Errorf("machine modified by disassembly (-before +after):\n%s", diff)
	}

	// Last byte of memory.
	d = m.Disasm(MemSize - 1)
	if d.Word != 0 {
		t.Errorf("got word %04X, want 0000", d.Word)
	}
}
