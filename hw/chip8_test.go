package hw

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"chipster/emu/log"
	"chipster/hw/snapshot"
)

func TestLoadROMSize(t *testing.T) {
	c := New(DefaultPlatform(), testSource())
	if err := c.LoadROM(make([]byte, MaxROMSize)); err != nil {
		t.Fatalf("loading a %d bytes ROM: %v", MaxROMSize, err)
	}
	if c.ProgramEnd() != MemSize {
		t.Errorf("got program end $%04X, want $%04X", c.ProgramEnd(), MemSize)
	}
	if c.State() != Running {
		t.Errorf("got state %s, want %s", c.State(), Running)
	}

	c = New(DefaultPlatform(), testSource())
	before := cloneMachine(c.Machine)
	err := c.LoadROM(bytes.Repeat([]byte{0xAA}, MaxROMSize+1))
	if !errors.Is(err, ErrROMTooLarge) {
		t.Fatalf("got err = %v, want ErrROMTooLarge", err)
	}
	if diff := diffMachines(before, c.Machine); diff != "" {
		t.Errorf("machine modified by failed load (-before +after):\n%s", diff)
	}
	if c.State() != Off {
		t.Errorf("got state %s, want %s", c.State(), Off)
	}
	if c.ROM() != nil {
		t.Errorf("ROM should not be retained after a failed load")
	}
}

func TestFinished(t *testing.T) {
	c := newTestChip8(t, DefaultPlatform(), 0x6A02, 0x6B03)

	for range 2 {
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if c.State() != Running {
		t.Fatalf("got state %s, want %s", c.State(), Running)
	}

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.State() != Finished {
		t.Fatalf("got state %s, want %s", c.State(), Finished)
	}

	// Nothing happens anymore.
	pc := c.PC
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.PC != pc {
		t.Errorf("PC changed after program end")
	}
	if n, _ := c.RunOneFrame(); n != 0 {
		t.Errorf("RunOneFrame executed %d instructions after program end", n)
	}
}

func TestRunOneFrame(t *testing.T) {
	// Infinite loop.
	c := newTestChip8(t, DefaultPlatform(), 0x1200)
	c.DT, c.ST = 5, 1

	n, err := c.RunOneFrame()
	if err != nil {
		t.Fatal(err)
	}
	if n != c.Platform.TickRate {
		t.Errorf("got %d instructions, want %d", n, c.Platform.TickRate)
	}
	if c.DT != 4 || c.ST != 0 {
		t.Errorf("got DT=%d ST=%d, want 4 0", c.DT, c.ST)
	}
}

func TestRunOneFrameWaitForBlank(t *testing.T) {
	words := []uint16{
		0xD001, // DRW V0, V0, 1
		0x1200, // JP #200
	}

	c := newTestChip8(t, NewPlatform(CosmacVIP), words...)
	n, err := c.RunOneFrame()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("wait-for-blank: got %d instructions, want 1", n)
	}

	c = newTestChip8(t, NewPlatform(Chip48), words...)
	n, err = c.RunOneFrame()
	if err != nil {
		t.Fatal(err)
	}
	if n != c.Platform.TickRate {
		t.Errorf("got %d instructions, want %d", n, c.Platform.TickRate)
	}
}

func TestRunOneFrameError(t *testing.T) {
	c := newTestChip8(t, DefaultPlatform(), 0x6A02, 0xFFFF)

	n, err := c.RunOneFrame()
	if !errors.Is(err, ErrInvalidOpcode) {
		t.Fatalf("got err = %v, want ErrInvalidOpcode", err)
	}
	if n != 1 {
		t.Errorf("got %d instructions, want 1", n)
	}
	wantPC(t, c.Machine, ProgramStart+2)
}

func TestReset(t *testing.T) {
	c := newTestChip8(t, DefaultPlatform(), 0x6A02, 0xD001, 0x1204)
	for range 3 {
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}

	wantPC(t, c.Machine, ProgramStart)
	wantReg(t, c.Machine, 0xA, 0)
	if c.State() != Running {
		t.Errorf("got state %s, want %s", c.State(), Running)
	}
	if !bytes.Equal(c.RAM.Data[ProgramStart:ProgramStart+6], program(0x6A02, 0xD001, 0x1204)) {
		t.Errorf("ROM not reloaded")
	}
	if bytes.Contains(c.Video, []byte{1}) {
		t.Errorf("screen not cleared")
	}
}

func TestResetAfterFinish(t *testing.T) {
	c := newTestChip8(t, DefaultPlatform(), 0x6A02)
	for range 2 {
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if c.State() != Finished {
		t.Fatalf("got state %s, want %s", c.State(), Finished)
	}

	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if c.State() != Running {
		t.Errorf("got state %s, want %s", c.State(), Running)
	}
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	wantReg(t, c.Machine, 0xA, 2)
}

func TestResetWithoutROM(t *testing.T) {
	c := New(DefaultPlatform(), testSource())
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if c.State() != Off {
		t.Errorf("got state %s, want %s", c.State(), Off)
	}
	wantPC(t, c.Machine, ProgramStart)
}

func TestTogglePause(t *testing.T) {
	c := newTestChip8(t, DefaultPlatform(), 0x1200)

	c.TogglePause()
	if c.State() != Paused {
		t.Fatalf("got state %s, want %s", c.State(), Paused)
	}
	c.DT = 3
	if n, _ := c.RunOneFrame(); n != 0 {
		t.Errorf("paused unit executed %d instructions", n)
	}
	if c.DT != 3 {
		t.Errorf("timers should not run while paused")
	}

	c.TogglePause()
	if c.State() != Running {
		t.Errorf("got state %s, want %s", c.State(), Running)
	}

	c.SetState(Finished)
	c.TogglePause()
	if c.State() != Finished {
		t.Errorf("TogglePause should not affect a finished unit")
	}
}

func TestSnapshot(t *testing.T) {
	words := []uint16{
		0x6A02, // LD VA, #02
		0x2208, // CALL #208
		0x1204, // JP #204
		0x0000,
		0xA000, // LD I, #000
		0xD125, // DRW V1, V2, 5
		0xFA15, // LD DT, VA
		0x00EE, // RET
	}
	c := newTestChip8(t, DefaultPlatform(), words...)
	for range 5 {
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	c.KeyDown(0x5)

	buf, err := c.SaveSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	saved := cloneMachine(c.Machine)

	for range 10 {
		if _, err := c.RunOneFrame(); err != nil {
			t.Fatal(err)
		}
	}
	c.ResetKeys()
	c.TogglePause()

	if err := c.LoadSnapshot(buf); err != nil {
		t.Fatal(err)
	}
	if diff := diffMachines(saved, c.Machine); diff != "" {
		t.Errorf("restored machine mismatch (-want +got):\n%s", diff)
	}
	if c.State() != Running {
		t.Errorf("got state %s, want %s", c.State(), Running)
	}
	if !bytes.Equal(c.ROM(), program(words...)) {
		t.Errorf("ROM not restored")
	}
}

func TestSnapshotErrors(t *testing.T) {
	c := newTestChip8(t, NewPlatform(CosmacVIP), 0x1200)
	buf, err := c.SaveSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	other := New(NewPlatform(SuperChip), testSource())
	if err := other.LoadSnapshot(buf); err == nil {
		t.Errorf("loading a snapshot from another variant should fail")
	}
	if other.State() != Off {
		t.Errorf("failed load should not change the state")
	}

	if err := c.LoadSnapshot([]byte(`{"version":`)); err == nil {
		t.Errorf("loading a truncated snapshot should fail")
	}
	if err := c.LoadSnapshot([]byte(`{"version":42}`)); err == nil {
		t.Errorf("loading a snapshot with unknown version should fail")
	}

	tests := []struct {
		name   string
		modify func(*snapshot.Chip8)
	}{
		{"program too large", func(s *snapshot.Chip8) { s.Machine.ProgramSize = 0xFE00 }},
		{"program size above rom size", func(s *snapshot.Chip8) { s.Machine.ProgramSize = 4 }},
		{"rom size above program size", func(s *snapshot.Chip8) { s.ROM = append(s.ROM, 0x00, 0xE0) }},
		{"rom too large", func(s *snapshot.Chip8) {
			s.ROM = make([]byte, MaxROMSize+2)
			s.Machine.ProgramSize = MaxROMSize
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := snapshot.Unmarshal(buf)
			if err != nil {
				t.Fatal(err)
			}
			tt.modify(s)

			before := cloneMachine(c.Machine)
			if err := c.LoadSnapshot(snapshot.Marshal(s)); err == nil {
				t.Fatalf("loading the snapshot should fail")
			}
			if diff := diffMachines(before, c.Machine); diff != "" {
				t.Errorf("failed load modified the machine (-before +after):\n%s", diff)
			}
		})
	}
}

func TestResetTrace(t *testing.T) {
	c := newTestChip8(t, NewPlatform(Modern), 0x6A02, 0x1202)

	var buf bytes.Buffer
	c.SetTraceOutput(&buf)
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("reset wrote to the trace output: %q", buf.String())
	}

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "0200  6A02  LD") {
		t.Errorf("tracer not carried over reset, got %q", buf.String())
	}
}

// failWriter fails every write and counts them.
type failWriter struct{ writes int }

func (w *failWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestTraceWriteError(t *testing.T) {
	var logbuf bytes.Buffer
	log.SetOutput(&logbuf)

	c := newTestChip8(t, NewPlatform(Modern), 0x6A02, 0x6B03, 0x1204)
	var w failWriter
	c.SetTraceOutput(&w)
	for range 3 {
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if w.writes != 1 {
		t.Errorf("got %d trace writes, want 1", w.writes)
	}
	if got := strings.Count(logbuf.String(), "disk full"); got != 1 {
		t.Errorf("write error logged %d times, want 1\n%s", got, logbuf.String())
	}
}
