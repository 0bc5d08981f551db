package snapshot

import (
	"fmt"

	"github.com/go-faster/jx"
)

// Marshal encodes s as JSON.
func Marshal(s *Chip8) []byte {
	var e jx.Encoder
	s.Encode(&e)
	return e.Bytes()
}

// Unmarshal decodes a JSON snapshot.
func Unmarshal(buf []byte) (*Chip8, error) {
	var s Chip8
	if err := s.Decode(jx.DecodeBytes(buf)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	return &s, nil
}

func (s *Chip8) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.Field("version", func(e *jx.Encoder) { e.Int(s.Version) })
	e.Field("variant", func(e *jx.Encoder) { e.Str(s.Variant) })
	e.Field("state", func(e *jx.Encoder) { e.UInt8(s.State) })
	e.Field("rom", func(e *jx.Encoder) { e.Base64(s.ROM) })
	e.Field("machine", s.Machine.Encode)
	e.ObjEnd()
}

func (s *Chip8) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
		case "variant":
			s.Variant, err = d.Str()
		case "state":
			s.State, err = d.UInt8()
		case "rom":
			s.ROM, err = d.Base64()
		case "machine":
			err = s.Machine.Decode(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func (m *Machine) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.Field("ram", func(e *jx.Encoder) { e.Base64(m.RAM) })
	e.Field("v", func(e *jx.Encoder) { e.Base64(m.V[:]) })
	e.Field("i", func(e *jx.Encoder) { e.UInt16(m.I) })
	e.Field("pc", func(e *jx.Encoder) { e.UInt16(m.PC) })
	e.Field("stack", func(e *jx.Encoder) {
		e.ArrStart()
		for _, addr := range m.Stack {
			e.UInt16(addr)
		}
		e.ArrEnd()
	})
	e.Field("sp", func(e *jx.Encoder) { e.UInt8(m.SP) })
	e.Field("dt", func(e *jx.Encoder) { e.UInt8(m.DT) })
	e.Field("st", func(e *jx.Encoder) { e.UInt8(m.ST) })
	e.Field("keypad", func(e *jx.Encoder) {
		e.ArrStart()
		for _, down := range m.Keypad {
			e.Bool(down)
		}
		e.ArrEnd()
	})
	e.Field("video", func(e *jx.Encoder) { e.Base64(m.Video) })
	e.Field("program_size", func(e *jx.Encoder) { e.UInt16(m.ProgramSize) })
	e.ObjEnd()
}

func (m *Machine) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "ram":
			m.RAM, err = d.Base64()
		case "v":
			var buf []byte
			if buf, err = d.Base64(); err == nil {
				if len(buf) != len(m.V) {
					return fmt.Errorf("v: got %d registers, want %d", len(buf), len(m.V))
				}
				copy(m.V[:], buf)
			}
		case "i":
			m.I, err = d.UInt16()
		case "pc":
			m.PC, err = d.UInt16()
		case "stack":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(m.Stack) {
					return fmt.Errorf("too many stack entries")
				}
				addr, err := d.UInt16()
				m.Stack[i] = addr
				i++
				return err
			})
		case "sp":
			m.SP, err = d.UInt8()
		case "dt":
			m.DT, err = d.UInt8()
		case "st":
			m.ST, err = d.UInt8()
		case "keypad":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(m.Keypad) {
					return fmt.Errorf("too many keys")
				}
				down, err := d.Bool()
				m.Keypad[i] = down
				i++
				return err
			})
		case "video":
			m.Video, err = d.Base64()
		case "program_size":
			m.ProgramSize, err = d.UInt16()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}
