package emu

import (
	"os"
	"path/filepath"
	"testing"

	"chipster/hw"
)

// program assembles instruction words into a ROM.
func program(words ...uint16) []byte {
	buf := make([]byte, 0, 2*len(words))
	for _, w := range words {
		buf = append(buf, byte(w>>8), byte(w))
	}
	return buf
}

// writeROM writes a ROM file in dir and returns its path.
func writeROM(tb testing.TB, dir, name string, words ...uint16) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, program(words...), 0o644); err != nil {
		tb.Fatal(err)
	}
	return path
}

// testOutput is an Output replaying a scripted list of controls, one per
// frame.
type testOutput struct {
	controls []Controls

	presented int
	menus     []int // menu cursor, each time the menu is shown
	closed    bool
}

func (o *testOutput) Poll(ctl *Controls) bool {
	if len(o.controls) > 0 {
		*ctl = o.controls[0]
		o.controls = o.controls[1:]
	}
	return !o.closed
}

func (o *testOutput) Present(*hw.Machine) { o.presented++ }

func (o *testOutput) ShowMenu(m *Menu) { o.menus = append(o.menus, m.Cursor()) }

func (o *testOutput) Close() error {
	o.closed = true
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Emulation.Seed = 1
	return cfg
}

func launch(tb testing.TB, path string, cfg Config, out Output) *Emulator {
	tb.Helper()

	e, err := Launch(path, cfg, out)
	if err != nil {
		tb.Fatalf("launch failed: %v", err)
	}
	return e
}

func tick(tb testing.TB, e *Emulator) bool {
	tb.Helper()

	stop, err := e.Tick()
	if err != nil {
		tb.Fatalf("tick: unexpected error: %v", err)
	}
	return stop
}

func wantState(tb testing.TB, e *Emulator, want hw.State) {
	tb.Helper()

	if got := e.Chip8.State(); got != want {
		tb.Errorf("got state %s, want %s", got, want)
	}
}
