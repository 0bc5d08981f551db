package emu

import (
	"fmt"
	"path/filepath"
)

// Menu is the list of ROMs to choose from, when the emulator has been started
// on a directory.
type Menu struct {
	paths  []string
	cursor int
}

func NewMenu(paths []string) *Menu {
	return &Menu{paths: paths}
}

func (m *Menu) Len() int { return len(m.paths) }

// Cursor returns the index of the selected entry.
func (m *Menu) Cursor() int { return m.cursor }

// Selected returns the path of the selected ROM.
func (m *Menu) Selected() string { return m.paths[m.cursor] }

// Title returns the title of the i-th entry.
func (m *Menu) Title(i int) string {
	return fmt.Sprintf("%d/%d %s", i+1, len(m.paths), filepath.Base(m.paths[i]))
}

func (m *Menu) Up() {
	m.cursor = (m.cursor + len(m.paths) - 1) % len(m.paths)
}

func (m *Menu) Down() {
	m.cursor = (m.cursor + 1) % len(m.paths)
}

// Left moves 10 entries up, or to the last entry when that would reach or pass
// the first one.
func (m *Menu) Left() {
	if m.cursor-10 <= 0 {
		m.cursor = len(m.paths) - 1
		return
	}
	m.cursor -= 10
}

// Right moves 10 entries down, or back to the first entry when that would reach
// or pass the last one.
func (m *Menu) Right() {
	if m.cursor+10 >= len(m.paths)-1 {
		m.cursor = 0
		return
	}
	m.cursor += 10
}
