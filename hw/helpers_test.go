package hw

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// program assembles instruction words into a ROM.
func program(words ...uint16) []byte {
	buf := make([]byte, 0, 2*len(words))
	for _, w := range words {
		buf = append(buf, byte(w>>8), byte(w))
	}
	return buf
}

func testSource() rand.Source { return rand.NewPCG(1, 2) }

// newTestChip8 returns a running unit with the given program loaded.
func newTestChip8(tb testing.TB, p Platform, words ...uint16) *Chip8 {
	tb.Helper()

	c := New(p, testSource())
	if err := c.LoadROM(program(words...)); err != nil {
		tb.Fatalf("failed to load program: %v", err)
	}
	return c
}

// newTestMachine returns a machine with words written at the program start.
func newTestMachine(tb testing.TB, p Platform, words ...uint16) *Machine {
	tb.Helper()

	m := NewMachine(p, testSource())
	if err := m.LoadProgram(program(words...)); err != nil {
		tb.Fatalf("failed to load program: %v", err)
	}
	return m
}

// step executes n instructions.
func step(tb testing.TB, m *Machine, n int) {
	tb.Helper()

	for i := range n {
		if err := m.Step(); err != nil {
			tb.Fatalf("step %d: unexpected error: %v", i, err)
		}
	}
}

// exec executes a single instruction word.
func exec(tb testing.TB, m *Machine, word uint16) {
	tb.Helper()

	if err := m.Execute(Decode(word)); err != nil {
		tb.Fatalf("execute %04X: unexpected error: %v", word, err)
	}
}

func wantPC(tb testing.TB, m *Machine, want uint16) {
	tb.Helper()

	if m.PC != want {
		tb.Errorf("got PC=$%04X, want $%04X", m.PC, want)
	}
}

func wantReg(tb testing.TB, m *Machine, x int, want uint8) {
	tb.Helper()

	if m.V[x] != want {
		tb.Errorf("got V%X=$%02X, want $%02X", x, m.V[x], want)
	}
}

func wantI(tb testing.TB, m *Machine, want uint16) {
	tb.Helper()

	if m.I != want {
		tb.Errorf("got I=$%04X, want $%04X", m.I, want)
	}
}

func cloneMachine(m *Machine) *Machine {
	c := *m
	c.RAM.Data = bytes.Clone(m.RAM.Data)
	c.Video = bytes.Clone(m.Video)
	return &c
}

func diffMachines(a, b *Machine) string {
	return cmp.Diff(a, b, cmpopts.IgnoreUnexported(Machine{}))
}

// withQuirks returns the default platform with exactly the given quirks.
func withQuirks(q Quirks) Platform {
	p := DefaultPlatform()
	p.Quirks = q
	return p
}
