package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("module %q not found", name)
		}
		if mod.String() != name {
			t.Errorf("got module name %q, want %q", mod.String(), name)
		}
	}

	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("sentinel module name should not be found")
	}
	if _, ok := ModuleByName("nope"); ok {
		t.Errorf("unknown module should not be found")
	}
}

func TestEntryZ(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { DisableDebugModules(ModuleMaskAll) })

	// Debug is off by default.
	if z := ModCPU.DebugZ("hidden"); z != nil {
		t.Fatalf("DebugZ should return nil when module is disabled")
	}
	ModCPU.DebugZ("hidden").Hex16("pc", 0x200).End()
	if buf.Len() != 0 {
		t.Fatalf("disabled entry produced output: %q", buf.String())
	}

	EnableDebugModules(ModCPU.Mask())
	ModCPU.DebugZ("exec").
		Hex16("pc", 0x0200).
		Hex8("vx", 0x0a).
		Error("err", errors.New("boom")).
		Bool("jump", true).
		Duration("took", 1500*time.Millisecond).
		End()

	out := buf.String()
	for _, want := range []string{"exec", "pc=0200", "vx=0A", "err=boom", "_mod=cpu", "jump=true", "took=1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestEntryWithField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	ModROM.WithField("path", "pong.ch8").Warnf("rom is %d bytes too large", 12)

	out := buf.String()
	for _, want := range []string{"rom is 12 bytes too large", "path=pong.ch8", "_mod=rom", "level=warning"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}

	buf.Reset()
	ModROM.Debugf("hidden")
	if buf.Len() != 0 {
		t.Errorf("disabled debug entry produced output: %q", buf.String())
	}
}
