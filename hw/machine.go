package hw

import (
	"io"
	"math/rand/v2"

	"chipster/hw/hwio"
)

const (
	MemSize      = 0x1000
	ProgramStart = 0x200
	MaxROMSize   = MemSize - ProgramStart

	NumRegs     = 16
	StackSize   = 16
	NumKeys     = 16
	GlyphHeight = 5 // bytes per font glyph

	fontAddr = 0x000
)

// Hexadecimal digits 0-F, one 4x5 glyph per digit.
var font = [16 * GlyphHeight]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Machine holds the whole state of an emulated unit: memory, registers,
// timers, keypad and framebuffer. It's not safe for concurrent use.
type Machine struct {
	Platform Platform

	RAM hwio.Mem

	// registers
	V  [NumRegs]uint8
	I  uint16
	PC uint16

	Stack [StackSize]uint16
	SP    uint8

	// timers
	DT uint8
	ST uint8

	Keypad [NumKeys]bool

	// One byte per pixel, 0 or 1, row-major.
	Video []uint8

	ProgramSize uint16

	rnd *rand.Rand

	// Set by DXYN, cleared before each instruction.
	drew bool

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

// NewMachine creates a machine at power-up state. The random source feeds the
// RND instruction, if nil a randomly seeded one is used.
func NewMachine(p Platform, src rand.Source) *Machine {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	m := &Machine{
		Platform: p,
		RAM:      hwio.NewMem("ram", MemSize),
		Video:    make([]uint8, p.Width*p.Height),
		PC:       ProgramStart,
		rnd:      rand.New(src),
	}
	copy(m.RAM.Data[fontAddr:], font[:])
	return m
}

// LoadProgram copies the program at ProgramStart. On error, the machine is
// left untouched.
func (m *Machine) LoadProgram(prg []byte) error {
	if len(prg) > MaxROMSize {
		return &ROMSizeError{Size: len(prg), Max: MaxROMSize}
	}
	if err := m.RAM.Load(ProgramStart, prg); err != nil {
		return err
	}
	m.ProgramSize = uint16(len(prg))
	return nil
}

// ProgramEnd returns the first address past the loaded program.
func (m *Machine) ProgramEnd() uint16 {
	return ProgramStart + m.ProgramSize
}

func (m *Machine) ClearScreen() {
	clear(m.Video)
}

// TickTimers decrements the delay and sound timers, if non-zero.
func (m *Machine) TickTimers() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}

// Step fetches and executes the instruction at PC.
func (m *Machine) Step() error {
	in, err := m.Fetch()
	if err != nil {
		return err
	}
	return m.Execute(in)
}

func (m *Machine) KeyDown(key int) {
	if key >= 0 && key < NumKeys {
		m.Keypad[key] = true
	}
}

func (m *Machine) ResetKeys() {
	m.Keypad = [NumKeys]bool{}
}

func (m *Machine) isKeyDown(key uint8) bool {
	return key < NumKeys && m.Keypad[key]
}

// HasColor reports whether the pixel at (x, y) is set.
func (m *Machine) HasColor(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Platform.Width || y >= m.Platform.Height {
		return false
	}
	return m.Video[y*m.Platform.Width+x] == 1
}

func (m *Machine) SetTraceOutput(w io.Writer) {
	if w == nil {
		m.tracer = nil
		return
	}
	m.tracer = &tracer{w: w}
}
