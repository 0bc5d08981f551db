package emu

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"chipster/hw"
)

func TestSaveAsPNG(t *testing.T) {
	m := hw.NewMachine(hw.NewPlatform(hw.SuperChip), nil)
	m.Video[5*128+7] = 1

	pal := Palette{Foreground: Color{0xFF, 0, 0}, Background: Color{0, 0, 0xFF}}
	path := filepath.Join(t.TempDir(), "screen.png")
	if err := SaveAsPNG(pal.Screenshot(m), path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Fatalf("got image size %dx%d, want 128x64", b.Dx(), b.Dy())
	}
	if r, g, b, _ := img.At(7, 5).RGBA(); r != 0xFFFF || g != 0 || b != 0 {
		t.Errorf("pixel (7,5) should be red, got %d %d %d", r, g, b)
	}
	if r, g, b, _ := img.At(0, 0).RGBA(); r != 0 || g != 0 || b != 0xFFFF {
		t.Errorf("pixel (0,0) should be blue, got %d %d %d", r, g, b)
	}
}
