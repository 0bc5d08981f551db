package input

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// A Code is a keyboard key, identified by its scancode, i.e its physical
// position on the keyboard.
type Code sdl.Scancode

// Name returns an user-friendly name for the key.
func (c Code) Name() string {
	return sdl.GetScancodeName(sdl.Scancode(c))
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.Name()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	sc := sdl.GetScancodeFromName(string(text))
	if sc == sdl.SCANCODE_UNKNOWN {
		return fmt.Errorf("unrecognized key %q", text)
	}
	*c = Code(sc)
	return nil
}
