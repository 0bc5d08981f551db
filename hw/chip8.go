package hw

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"chipster/emu/log"
	"chipster/hw/snapshot"
)

// Chip8 wraps a Machine with its life cycle: ROM loading, natural end of
// program detection, pause and reset.
type Chip8 struct {
	*Machine

	state State
	rom   []byte // copy of the loaded ROM, reloaded on reset
	src   rand.Source
}

// New creates a powered-up, but Off, unit. src is the random source used by
// the RND instruction, nil means a randomly seeded one.
func New(p Platform, src rand.Source) *Chip8 {
	return &Chip8{
		Machine: NewMachine(p, src),
		state:   Off,
		src:     src,
	}
}

func (c *Chip8) State() State { return c.state }

// SetState forces the life cycle state. It's up to the caller to only perform
// legal transitions.
func (c *Chip8) SetState(s State) {
	if s != c.state {
		log.ModEmu.DebugZ("state change").
			Stringer("from", c.state).
			Stringer("to", s).
			End()
	}
	c.state = s
}

// TogglePause switches between Running and Paused. Other states are left
// untouched.
func (c *Chip8) TogglePause() {
	switch c.state {
	case Running:
		c.SetState(Paused)
	case Paused:
		c.SetState(Running)
	}
}

// LoadROM loads rom at the program start address and starts running it. If
// the ROM doesn't fit, an error is returned and the machine is not modified.
func (c *Chip8) LoadROM(rom []byte) error {
	if err := c.Machine.LoadProgram(rom); err != nil {
		return err
	}
	c.rom = bytes.Clone(rom)
	log.ModROM.InfoZ("ROM loaded").Int("size", len(rom)).End()
	c.SetState(Running)
	return nil
}

// ROM returns the currently loaded ROM.
func (c *Chip8) ROM() []byte { return c.rom }

// Reset reinitializes the machine to its power-up state and reloads the ROM,
// if any. Execution restarts from the program start address.
func (c *Chip8) Reset() error {
	m := NewMachine(c.Platform, c.src)
	m.ClearScreen()
	m.tracer = c.Machine.tracer
	c.Machine = m

	if c.rom == nil {
		c.SetState(Off)
		return nil
	}
	if err := c.Machine.LoadProgram(c.rom); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if c.state != Off {
		c.SetState(Running)
	}
	return nil
}

// Step executes one instruction, if running. Reaching the end of the program
// switches to the Finished state.
func (c *Chip8) Step() error {
	if c.state != Running {
		return nil
	}
	if c.PC >= c.ProgramEnd() {
		c.SetState(Finished)
		return nil
	}
	return c.Machine.Step()
}

// RunOneFrame runs the instructions of a 60Hz frame, then updates the timers.
// It returns the number of executed instructions.
func (c *Chip8) RunOneFrame() (int, error) {
	if c.state != Running {
		return 0, nil
	}

	n := 0
	for range c.Platform.TickRate {
		if err := c.Step(); err != nil {
			return n, err
		}
		if c.state != Running {
			break
		}
		n++
		if c.drew && c.Platform.HasQuirk(WaitForBlank) {
			break
		}
	}
	c.TickTimers()
	return n, nil
}

// SaveSnapshot serializes the whole machine state.
func (c *Chip8) SaveSnapshot() ([]byte, error) {
	m := c.Machine
	s := &snapshot.Chip8{
		Version: snapshot.Version,
		Variant: c.Platform.Variant.String(),
		State:   uint8(c.state),
		ROM:     c.rom,
		Machine: snapshot.Machine{
			RAM:         m.RAM.Data,
			V:           m.V,
			I:           m.I,
			PC:          m.PC,
			Stack:       m.Stack,
			SP:          m.SP,
			DT:          m.DT,
			ST:          m.ST,
			Keypad:      m.Keypad,
			Video:       m.Video,
			ProgramSize: m.ProgramSize,
		},
	}
	return snapshot.Marshal(s), nil
}

// LoadSnapshot restores a state saved with SaveSnapshot. The snapshot must
// have been taken on the same platform variant.
func (c *Chip8) LoadSnapshot(buf []byte) error {
	s, err := snapshot.Unmarshal(buf)
	if err != nil {
		return err
	}
	if s.Variant != c.Platform.Variant.String() {
		return fmt.Errorf("snapshot was taken on %s, current platform is %s", s.Variant, c.Platform.Variant)
	}
	sm := &s.Machine
	if len(sm.RAM) != MemSize {
		return fmt.Errorf("snapshot: invalid memory size %d", len(sm.RAM))
	}
	if len(sm.Video) != c.Platform.Width*c.Platform.Height {
		return fmt.Errorf("snapshot: invalid framebuffer size %d", len(sm.Video))
	}
	if int(sm.SP) > StackSize {
		return fmt.Errorf("snapshot: invalid stack pointer %d", sm.SP)
	}
	if State(s.State) > Finished {
		return fmt.Errorf("snapshot: invalid state %d", s.State)
	}
	if int(sm.ProgramSize) > MaxROMSize {
		return fmt.Errorf("snapshot: invalid program size %d", sm.ProgramSize)
	}
	if len(s.ROM) != int(sm.ProgramSize) {
		return fmt.Errorf("snapshot: ROM size %d doesn't match program size %d", len(s.ROM), sm.ProgramSize)
	}

	m := NewMachine(c.Platform, c.src)
	m.tracer = c.Machine.tracer
	copy(m.RAM.Data, sm.RAM)
	copy(m.Video, sm.Video)
	m.V = sm.V
	m.I = sm.I
	m.PC = sm.PC
	m.Stack = sm.Stack
	m.SP = sm.SP
	m.DT = sm.DT
	m.ST = sm.ST
	m.Keypad = sm.Keypad
	m.ProgramSize = sm.ProgramSize

	c.Machine = m
	c.rom = s.ROM
	c.SetState(State(s.State))
	return nil
}
