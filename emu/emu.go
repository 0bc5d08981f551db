package emu

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"chipster/emu/log"
	"chipster/hw"
	"chipster/rom"
)

// FrameRate is the display refresh rate, timers are decremented at that rate.
const FrameRate = 60

type Emulator struct {
	Chip8 *hw.Chip8
	out   Output
	cfg   Config
	menu  *Menu // nil when running a single ROM

	quicksave []byte
	frames    uint64
	steps     uint64

	// These are accessed concurrently by the emulator loop and signal handlers.
	quit  atomic.Bool
	reset atomic.Bool
}

// Launch creates the machine and loads the ROM at path. If path is a
// directory, the emulator starts with the ROM selection menu. It doesn't
// start the emulation loop, call Run() for that.
func Launch(path string, cfg Config, out Output) (*Emulator, error) {
	e := &Emulator{out: out, cfg: cfg}
	e.Chip8 = e.newChip8()

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		paths, err := rom.ReadDir(path)
		if err != nil {
			return nil, err
		}
		e.menu = NewMenu(paths)
		log.ModEmu.InfoZ("ROM menu").Int("roms", len(paths)).End()
	} else if err := e.loadROM(path); err != nil {
		return nil, err
	}

	log.ModEmu.InfoZ("Emulator launched").Stringer("platform", e.Chip8.Platform).End()
	return e, nil
}

func (e *Emulator) newChip8() *hw.Chip8 {
	c := hw.New(e.cfg.Platform(), e.cfg.RandSource())
	if e.cfg.TraceOut != nil {
		c.SetTraceOutput(e.cfg.TraceOut)
	}
	return c
}

// loadROM loads the ROM at path into a fresh machine.
func (e *Emulator) loadROM(path string) error {
	r, err := rom.Open(path)
	if err != nil {
		return err
	}
	c := e.newChip8()
	if err := c.LoadROM(r.Data); err != nil {
		return fmt.Errorf("%s: %w", r.Name(), err)
	}
	e.Chip8 = c
	return nil
}

// Frames returns the number of elapsed frames.
func (e *Emulator) Frames() uint64 { return e.frames }

// Steps returns the number of executed instructions.
func (e *Emulator) Steps() uint64 { return e.steps }

// Run runs the emulation loop at 60Hz, until the output is closed, the user
// quits, or an unrecoverable error happens.
func (e *Emulator) Run() error {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	var err error
	for {
		var stop bool
		if stop, err = e.Tick(); stop {
			break
		}
		<-ticker.C
	}

	log.ModEmu.InfoZ("Emulation loop exited").Uint("frames", e.frames).End()
	if cerr := e.out.Close(); err == nil {
		err = cerr
	}
	return err
}

// RunFrames runs n frames as fast as possible.
func (e *Emulator) RunFrames(n int) error {
	for range n {
		stop, err := e.Tick()
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return nil
}

// Tick processes a single frame: user controls, emulation then display. It
// returns true when the emulation loop should stop.
func (e *Emulator) Tick() (bool, error) {
	var ctl Controls
	if !e.out.Poll(&ctl) || ctl.Quit || e.quit.Load() {
		return true, nil
	}
	e.frames++

	if ctl.Escape {
		if e.menu == nil || e.Chip8.State() == hw.Off {
			return true, nil
		}
		log.ModEmu.InfoZ("Back to menu").End()
		e.Chip8.SetState(hw.Off)
	}

	if e.menu != nil && e.Chip8.State() == hw.Off {
		e.updateMenu(&ctl)
		if e.Chip8.State() == hw.Off {
			e.out.ShowMenu(e.menu)
			return false, nil
		}
	}

	if ctl.Pause {
		e.Chip8.TogglePause()
	}
	if ctl.Reset {
		e.Reset()
	}
	if err := e.handleReset(); err != nil {
		return true, err
	}
	if ctl.Save {
		e.quickSave()
	}
	if ctl.Load {
		e.quickLoad()
	}

	for key, down := range ctl.Keypad {
		if down {
			e.Chip8.KeyDown(key)
		}
	}

	if err := e.RunOneFrame(); err != nil {
		return true, err
	}

	if e.Chip8.State() == hw.Finished {
		log.ModEmu.InfoZ("Program finished, restarting").End()
		if err := e.Chip8.Reset(); err != nil {
			return true, err
		}
	}

	e.out.Present(e.Chip8.Machine)
	e.Chip8.ResetKeys()
	return false, nil
}

// RunOneFrame runs the machine for a frame, applying the invalid opcode
// policy.
func (e *Emulator) RunOneFrame() error {
	n, err := e.Chip8.RunOneFrame()
	e.steps += uint64(n)
	if err == nil {
		return nil
	}

	var operr *hw.InvalidOpcodeError
	if errors.As(err, &operr) {
		log.ModEmu.ErrorZ("Invalid opcode").
			Hex16("op", operr.Opcode).
			Hex16("pc", operr.PC).
			Stringer("policy", e.cfg.Emulation.OnInvalidOpcode).
			End()

		switch e.cfg.Emulation.OnInvalidOpcode {
		case Skip:
			e.Chip8.PC += 2
			return nil
		case Ignore:
			return nil
		}
	} else {
		log.ModEmu.ErrorZ("Emulation error").Error("err", err).End()
	}

	e.Chip8.SetState(hw.Off)
	return err
}

func (e *Emulator) updateMenu(ctl *Controls) {
	switch {
	case ctl.Up:
		e.menu.Up()
	case ctl.Down:
		e.menu.Down()
	case ctl.Left:
		e.menu.Left()
	case ctl.Right:
		e.menu.Right()
	case ctl.Enter:
		path := e.menu.Selected()
		if err := e.loadROM(path); err != nil {
			log.ModEmu.WarnZ("Failed to load ROM").String("path", path).Error("err", err).End()
		}
	}
}

func (e *Emulator) quickSave() {
	buf, err := e.Chip8.SaveSnapshot()
	if err != nil {
		log.ModEmu.WarnZ("Failed to save state").Error("err", err).End()
		return
	}
	e.quicksave = buf
	log.ModEmu.InfoZ("State saved").Int("size", len(buf)).End()
}

func (e *Emulator) quickLoad() {
	if e.quicksave == nil {
		log.ModEmu.WarnZ("No saved state").End()
		return
	}
	if err := e.Chip8.LoadSnapshot(e.quicksave); err != nil {
		log.ModEmu.WarnZ("Failed to load state").Error("err", err).End()
		return
	}
	log.ModEmu.InfoZ("State loaded").End()
}

// SaveState writes a snapshot of the machine to path.
func (e *Emulator) SaveState(path string) error {
	buf, err := e.Chip8.SaveSnapshot()
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// LoadState restores a snapshot written by SaveState.
func (e *Emulator) LoadState(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.Chip8.LoadSnapshot(buf)
}

// Stop and Reset allow to control the emulator loop in a concurrent-safe way.

func (e *Emulator) Stop()  { e.quit.Store(true) }
func (e *Emulator) Reset() { e.reset.Store(true) }

func (e *Emulator) handleReset() error {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing reset").End()
		return e.Chip8.Reset()
	}
	return nil
}
