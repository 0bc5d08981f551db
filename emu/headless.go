package emu

import (
	"image"

	"chipster/hw"
)

// Headless is an Output that doesn't display anything. It keeps the last
// presented frame, for screenshots.
type Headless struct {
	palette Palette
	last    *image.RGBA
	frames  int
}

func NewHeadless(cfg VideoConfig) *Headless {
	return &Headless{
		palette: Palette{Foreground: cfg.Foreground, Background: cfg.Background},
	}
}

func (h *Headless) Poll(*Controls) bool { return true }

func (h *Headless) Present(m *hw.Machine) {
	if h.last == nil || h.last.Rect.Dx() != m.Platform.Width || h.last.Rect.Dy() != m.Platform.Height {
		h.last = image.NewRGBA(image.Rect(0, 0, m.Platform.Width, m.Platform.Height))
	}
	h.palette.Render(h.last, m)
	h.frames++
}

func (h *Headless) ShowMenu(*Menu) {}

func (h *Headless) Close() error { return nil }

// Screenshot returns the last presented frame, nil if none.
func (h *Headless) Screenshot() *image.RGBA { return h.last }

// Frames returns the number of presented frames.
func (h *Headless) Frames() int { return h.frames }
