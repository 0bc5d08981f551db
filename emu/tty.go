package emu

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/term"

	"chipster/emu/log"
	"chipster/hw"
	"chipster/hw/input"
)

// Terminals don't report key releases: a key press holds the keypad key down
// for that many frames.
const ttyKeyHold = 6

// TTY is an Output rendering the framebuffer in a terminal, 2 rows of pixels
// per line of text. The terminal is put in raw mode, keys are read without
// blocking.
type TTY struct {
	t   *term.Term
	out *bufio.Writer
	in  chan []byte

	keys input.Config
	hold [input.NumKeys]int

	done chan struct{}
}

func NewTTY(cfg input.Config) (*TTY, error) {
	t, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := t.SetReadTimeout(100 * time.Millisecond); err != nil {
		t.Restore()
		t.Close()
		return nil, fmt.Errorf("failed to set terminal read timeout: %w", err)
	}

	tty := &TTY{
		t:    t,
		out:  bufio.NewWriter(t),
		in:   make(chan []byte, 16),
		keys: cfg,
		done: make(chan struct{}),
	}

	// Hide cursor, clear screen.
	tty.out.WriteString("\x1b[?25l\x1b[2J")
	go tty.read()
	return tty, nil
}

func (tty *TTY) read() {
	defer close(tty.in)

	buf := make([]byte, 64)
	for {
		select {
		case <-tty.done:
			return
		default:
		}
		n, err := tty.t.Read(buf)
		if n > 0 {
			tty.in <- bytes.Clone(buf[:n])
		}
		if err != nil && !errors.Is(err, io.EOF) {
			log.ModInput.WarnZ("terminal read error").Error("err", err).End()
			return
		}
	}
}

func (tty *TTY) Poll(ctl *Controls) bool {
	open := true
	for draining := true; draining; {
		select {
		case buf, ok := <-tty.in:
			if !ok {
				open = false
				draining = false
				break
			}
			tty.parseInput(ctl, buf)
		default:
			draining = false
		}
	}

	for key := range tty.hold {
		if tty.hold[key] > 0 {
			ctl.Keypad[key] = true
			tty.hold[key]--
		}
	}
	return open
}

// parseInput decodes the bytes read from the terminal: control keys, escape
// sequences for arrows and function keys, and keypad characters.
func (tty *TTY) parseInput(ctl *Controls, buf []byte) {
	for len(buf) > 0 {
		n := 1
		switch c := buf[0]; c {
		case 0x03, 0x04: // Ctrl-C, Ctrl-D
			ctl.Quit = true
		case ' ':
			ctl.Pause = true
		case '\r', '\n':
			ctl.Enter = true
		case 0x1b:
			n = tty.parseEscape(ctl, buf)
		default:
			if key, ok := tty.keys.TTYKey(c); ok {
				tty.hold[key] = ttyKeyHold
			}
		}
		buf = buf[n:]
	}
}

var ttyEscapes = []struct {
	seq string
	set func(*Controls)
}{
	{"\x1b[A", func(c *Controls) { c.Up = true }},
	{"\x1b[B", func(c *Controls) { c.Down = true }},
	{"\x1b[C", func(c *Controls) { c.Right = true }},
	{"\x1b[D", func(c *Controls) { c.Left = true }},
	{"\x1bOP", func(c *Controls) { c.Reset = true }},   // F1
	{"\x1b[11~", func(c *Controls) { c.Reset = true }}, // F1 (rxvt)
	{"\x1b[15~", func(c *Controls) { c.Save = true }},  // F5
	{"\x1b[20~", func(c *Controls) { c.Load = true }},  // F9
}

// parseEscape decodes the escape sequence at the start of buf and returns its
// length. An unknown sequence is skipped, a lone escape is the Escape key.
func (tty *TTY) parseEscape(ctl *Controls, buf []byte) int {
	for _, esc := range ttyEscapes {
		if bytes.HasPrefix(buf, []byte(esc.seq)) {
			esc.set(ctl)
			return len(esc.seq)
		}
	}
	if len(buf) == 1 || (buf[1] != '[' && buf[1] != 'O') {
		ctl.Escape = true
		return 1
	}

	// Skip CSI/SS3 sequence up to its final byte.
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return i + 1
		}
	}
	return len(buf)
}

func (tty *TTY) Present(m *hw.Machine) {
	tty.out.WriteString("\x1b[H")
	renderHalfBlocks(tty.out, m)
	tty.out.WriteString("\x1b[0m")
	tty.flush()
}

// renderHalfBlocks writes the framebuffer using Unicode half blocks, each
// character cell shows 2 vertically adjacent pixels.
func renderHalfBlocks(w io.StringWriter, m *hw.Machine) {
	var line strings.Builder
	for y := 0; y < m.Platform.Height; y += 2 {
		line.Reset()
		for x := range m.Platform.Width {
			top, bottom := m.HasColor(x, y), m.HasColor(x, y+1)
			switch {
			case top && bottom:
				line.WriteString("█")
			case top:
				line.WriteString("▀")
			case bottom:
				line.WriteString("▄")
			default:
				line.WriteByte(' ')
			}
		}
		line.WriteString("\r\n")
		w.WriteString(line.String())
	}
}

func (tty *TTY) ShowMenu(menu *Menu) {
	const visible = 10

	tty.out.WriteString("\x1b[H\x1b[2J")
	tty.out.WriteString("Select a ROM (arrows to move, Enter to load, Esc to quit)\r\n\r\n")
	for i := menu.Cursor(); i < menu.Len() && i < menu.Cursor()+visible; i++ {
		prefix := "  "
		if i == menu.Cursor() {
			prefix = "\x1b[7m> "
		}
		fmt.Fprintf(tty.out, "%s%s\x1b[0m\r\n", prefix, menu.Title(i))
	}
	tty.flush()
}

func (tty *TTY) flush() {
	if err := tty.out.Flush(); err != nil {
		log.ModVideo.WarnZ("terminal write error").Error("err", err).End()
	}
}

// Close restores the terminal in its original mode.
func (tty *TTY) Close() error {
	close(tty.done)
	for range tty.in {
		// wait for the reader to exit.
	}

	// Show cursor, reset attributes.
	tty.out.WriteString("\x1b[0m\x1b[?25h\r\n")
	tty.flush()
	if err := tty.t.Restore(); err != nil {
		tty.t.Close()
		return err
	}
	return tty.t.Close()
}
