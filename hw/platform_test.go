package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPlatform(t *testing.T) {
	tests := []struct {
		variant  Variant
		w, h     int
		tickRate int
		quirks   Quirks
	}{
		{CosmacVIP, 64, 32, 15, VfReset | WaitForBlank | LoadStoreIncrementIndex},
		{Modern, 64, 32, 12, VfReset | WaitForBlank},
		{Chip48, 64, 32, 30, ShiftUsesSecondOperand | JumpAddsRegisterX},
		{SuperChip, 128, 64, 30, 0},
		{XoChip, 128, 64, 100, WrapSprites},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			got := NewPlatform(tt.variant)
			want := Platform{
				Variant:  tt.variant,
				Width:    tt.w,
				Height:   tt.h,
				Quirks:   tt.quirks,
				TickRate: tt.tickRate,
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("platform mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHasQuirk(t *testing.T) {
	p := NewPlatform(Chip48)
	if !p.HasQuirk(ShiftUsesSecondOperand) {
		t.Errorf("chip-48 should have ShiftUsesSecondOperand")
	}
	if !p.HasQuirk(ShiftUsesSecondOperand | JumpAddsRegisterX) {
		t.Errorf("chip-48 should have ShiftUsesSecondOperand|JumpAddsRegisterX")
	}
	if p.HasQuirk(VfReset) {
		t.Errorf("chip-48 should not have VfReset")
	}
	if p.HasQuirk(VfReset | JumpAddsRegisterX) {
		t.Errorf("HasQuirk should require all given quirks")
	}
}

func TestVariantText(t *testing.T) {
	for _, v := range Variants() {
		text, err := v.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Variant
		if err := got.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Errorf("got %s, want %s", got, v)
		}
	}

	if _, err := ParseVariant("Super-Chip"); err != nil {
		t.Errorf("variant names should be case insensitive: %v", err)
	}
	if _, err := ParseVariant("gameboy"); err == nil {
		t.Errorf("expected error for unknown variant")
	}
}

func TestWithTickRate(t *testing.T) {
	p := NewPlatform(Modern)
	if got := p.WithTickRate(0).TickRate; got != 12 {
		t.Errorf("WithTickRate(0) = %d, want 12", got)
	}
	if got := p.WithTickRate(500).TickRate; got != 500 {
		t.Errorf("WithTickRate(500) = %d, want 500", got)
	}
	if p.TickRate != 12 {
		t.Errorf("WithTickRate modified the receiver")
	}
}

func TestQuirksString(t *testing.T) {
	if got := Quirks(0).String(); got != "none" {
		t.Errorf("got %q, want %q", got, "none")
	}
	if got := (VfReset | WrapSprites).String(); got != "vf-reset|wrap-sprites" {
		t.Errorf("got %q, want %q", got, "vf-reset|wrap-sprites")
	}
}
