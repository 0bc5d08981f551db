package emu

import (
	"errors"
	"testing"

	"chipster/hw"
)

func TestBench(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeROM(t, dir, "loop.ch8", 0x7A01, 0x1200),
		writeROM(t, dir, "bad.ch8", 0x6A02, 0xF0FF),
		dir + "/missing.ch8",
	}

	cfg := testConfig()
	cfg.Emulation.Platform = hw.Chip48
	results := Bench(paths, cfg, 10)
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}

	loop := results[0]
	if loop.Err != nil {
		t.Errorf("loop: unexpected error %v", loop.Err)
	}
	if loop.Frames != 10 || loop.Steps != 10*30 || loop.State != hw.Running {
		t.Errorf("loop: got %d frames, %d steps, state %s", loop.Frames, loop.Steps, loop.State)
	}

	bad := results[1]
	if !errors.Is(bad.Err, hw.ErrInvalidOpcode) {
		t.Errorf("bad: got err = %v, want ErrInvalidOpcode", bad.Err)
	}
	if bad.Steps != 1 || bad.State != hw.Off {
		t.Errorf("bad: got %d steps, state %s", bad.Steps, bad.State)
	}

	if results[2].Err == nil {
		t.Errorf("missing: expected error")
	}
}
