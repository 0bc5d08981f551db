// Package input maps host keyboard keys to the 16-key hexadecimal keypad.
package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"

	"chipster/emu/log"
)

const NumKeys = 16

// The keypad layout is:
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
//
// By default it's mapped on the left side of a QWERTY keyboard.
var defaultKeys = [NumKeys]string{
	0x0: "X",
	0x1: "1", 0x2: "2", 0x3: "3",
	0x4: "Q", 0x5: "W", 0x6: "E",
	0x7: "A", 0x8: "S", 0x9: "D",
	0xA: "Z", 0xB: "C",
	0xC: "4", 0xD: "R", 0xE: "F", 0xF: "V",
}

const defaultTTYKeys = "x123qweasdzc4rfv"

type Config struct {
	Keys    [NumKeys]Code `toml:"keys"`     // SDL scancode names, one per keypad key
	TTYKeys string        `toml:"tty_keys"` // terminal characters, one per keypad key
}

func DefaultConfig() Config {
	var cfg Config
	for i, name := range defaultKeys {
		cfg.Keys[i] = Code(sdl.GetScancodeFromName(name))
	}
	cfg.TTYKeys = defaultTTYKeys
	return cfg
}

// Check validates the configuration, replacing invalid settings with their
// default values.
func (cfg *Config) Check() {
	def := DefaultConfig()
	for i, code := range cfg.Keys {
		if sdl.Scancode(code) == sdl.SCANCODE_UNKNOWN {
			cfg.Keys[i] = def.Keys[i]
		}
	}
	if err := checkTTYKeys(cfg.TTYKeys); err != nil {
		log.ModInput.Warnf("invalid tty keys: %v, fallback to %q", err, defaultTTYKeys)
		cfg.TTYKeys = defaultTTYKeys
	}
}

func checkTTYKeys(keys string) error {
	if len(keys) != NumKeys {
		return fmt.Errorf("need %d characters, got %d", NumKeys, len(keys))
	}
	for i := range len(keys) {
		if strings.IndexByte(keys, keys[i]) != i {
			return fmt.Errorf("duplicate key %q", keys[i])
		}
		if keys[i] < '!' || keys[i] > '~' {
			return fmt.Errorf("non printable key %q", keys[i])
		}
	}
	return nil
}

// TTYKey returns the keypad key mapped to the terminal character c.
// Letters are case insensitive.
func (cfg *Config) TTYKey(c byte) (int, bool) {
	idx := strings.IndexByte(cfg.TTYKeys, c)
	if idx < 0 {
		switch {
		case c >= 'A' && c <= 'Z':
			idx = strings.IndexByte(cfg.TTYKeys, c+'a'-'A')
		case c >= 'a' && c <= 'z':
			idx = strings.IndexByte(cfg.TTYKeys, c-'a'+'A')
		}
	}
	return idx, idx >= 0
}

// Provider reports the keypad state from the SDL keyboard state.
type Provider struct {
	keys     [NumKeys]sdl.Scancode
	keystate []uint8
}

func NewProvider(cfg Config) *Provider {
	var keystate []uint8
	sdl.Do(func() { keystate = sdl.GetKeyboardState() })
	return newProvider(cfg, keystate)
}

func newProvider(cfg Config, keystate []uint8) *Provider {
	p := &Provider{keystate: keystate}
	for i, code := range cfg.Keys {
		p.keys[i] = sdl.Scancode(code)
	}
	return p
}

// Keypad returns which keypad keys are currently down. It must be called
// after the SDL event queue has been pumped.
func (p *Provider) Keypad() (keys [NumKeys]bool) {
	for i, sc := range p.keys {
		if int(sc) < len(p.keystate) {
			keys[i] = p.keystate[sc] != 0
		}
	}
	return keys
}
