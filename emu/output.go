package emu

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"chipster/hw"
	"chipster/hw/input"
)

// Controls holds the user requests collected by an Output during a frame.
type Controls struct {
	Quit   bool // window closed or interrupted
	Escape bool // back to the menu, or quit
	Pause  bool // toggle pause
	Reset  bool
	Save   bool // quick save
	Load   bool // quick load

	// Menu navigation.
	Up, Down, Left, Right, Enter bool

	Keypad [input.NumKeys]bool
}

type Output interface {
	// Poll processes pending input events. It returns false if the output
	// has been closed.
	Poll(*Controls) bool

	// Present shows the machine framebuffer.
	Present(*hw.Machine)

	// ShowMenu shows the ROM selection menu.
	ShowMenu(*Menu)

	Close() error
}

// Palette renders framebuffer pixels.
type Palette struct {
	Foreground, Background Color
}

// Render draws the framebuffer of m into img, which must have the same size.
func (p Palette) Render(img *image.RGBA, m *hw.Machine) {
	fg := color.RGBA{p.Foreground.R, p.Foreground.G, p.Foreground.B, 0xFF}
	bg := color.RGBA{p.Background.R, p.Background.G, p.Background.B, 0xFF}

	w, h := m.Platform.Width, m.Platform.Height
	for y := range h {
		for x := range w {
			off := img.PixOffset(x, y)
			c := bg
			if m.Video[y*w+x] != 0 {
				c = fg
			}
			img.Pix[off+0] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
		}
	}
}

// Screenshot returns an image of the framebuffer of m.
func (p Palette) Screenshot(m *hw.Machine) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Platform.Width, m.Platform.Height))
	p.Render(img, m)
	return img
}

func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
