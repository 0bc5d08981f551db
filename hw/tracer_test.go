package hw

import (
	"bytes"
	"testing"
)

func TestTracer(t *testing.T) {
	m := newTestMachine(t, DefaultPlatform(), 0x6A02, 0xA123)

	var buf bytes.Buffer
	m.SetTraceOutput(&buf)
	step(t, m, 2)

	want := "" +
		"0200  6A02  LD    VA, #02     V:00000000000000000000000000000000 I:0000 SP:0 DT:00 ST:00\n" +
		"0202  A123  LD    I, #123     V:00000000000000000000020000000000 I:0000 SP:0 DT:00 ST:00\n"
	if got := buf.String(); got != want {
		t.Errorf("trace mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()
	m.SetTraceOutput(nil)
	m.PC = ProgramStart
	step(t, m, 1)
	if buf.Len() != 0 {
		t.Errorf("tracer still active after SetTraceOutput(nil)")
	}
}
