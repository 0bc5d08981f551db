package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"chipster/emu/log"
	"chipster/hw"
	"chipster/hw/input"
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	Video     VideoConfig     `toml:"video"`
	Input     input.Config    `toml:"input"`

	TraceOut io.WriteCloser `toml:"-"`
}

type EmulationConfig struct {
	Platform        hw.Variant   `toml:"platform"`
	TickRate        int          `toml:"tick_rate"` // 0 means variant default
	OnInvalidOpcode OpcodePolicy `toml:"on_invalid_opcode"`
	Seed            uint64       `toml:"seed"` // 0 means random
}

// OpcodePolicy controls what the emulator does upon an invalid opcode.
type OpcodePolicy uint8

const (
	Halt   OpcodePolicy = iota // stop emulation
	Skip                       // skip the instruction
	Ignore                     // abandon the frame, the instruction is retried next frame
)

var policyNames = [...]string{"halt", "skip", "ignore"}

func (p OpcodePolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("OpcodePolicy(%d)", p)
}

func (p OpcodePolicy) MarshalText() ([]byte, error) {
	if int(p) >= len(policyNames) {
		return nil, fmt.Errorf("invalid opcode policy %d", p)
	}
	return []byte(policyNames[p]), nil
}

func (p *OpcodePolicy) UnmarshalText(text []byte) error {
	for i, name := range policyNames {
		if string(text) == name {
			*p = OpcodePolicy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown invalid opcode policy %q", text)
}

type VideoConfig struct {
	Scale        int   `toml:"scale"`
	Foreground   Color `toml:"foreground"`
	Background   Color `toml:"background"`
	DisableVSync bool  `toml:"disable_vsync"`
	Monitor      int32 `toml:"monitor"`
}

const (
	defaultScale = 10
	maxScale     = 32
)

func (vcfg *VideoConfig) Check() {
	if vcfg.Scale < 1 || vcfg.Scale > maxScale {
		log.ModVideo.Warnf("Invalid scale factor %d, fallback to %d", vcfg.Scale, defaultScale)
		vcfg.Scale = defaultScale
	}
	if vcfg.Foreground == vcfg.Background {
		log.ModVideo.Warnf("Foreground and background colors are identical (%s)", vcfg.Foreground)
	}
}

// Color is an RGB color, encoded as #RRGGBB.
type Color struct{ R, G, B uint8 }

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	var r, g, b uint8
	if n, err := fmt.Sscanf(string(text), "#%02x%02x%02x", &r, &g, &b); n != 3 || len(text) != 7 {
		if err == nil {
			err = errors.New("expected #RRGGBB")
		}
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = Color{r, g, b}
	return nil
}

func DefaultConfig() Config {
	return Config{
		Emulation: EmulationConfig{
			Platform:        hw.CosmacVIP,
			OnInvalidOpcode: Halt,
		},
		Video: VideoConfig{
			Scale:      defaultScale,
			Foreground: Color{0xFF, 0xFF, 0xFF},
			Background: Color{0x00, 0x00, 0x00},
		},
		Input: input.DefaultConfig(),
	}
}

// Check validates the configuration, invalid settings are replaced by their
// default values.
func (cfg *Config) Check() {
	if cfg.Emulation.TickRate < 0 {
		log.ModEmu.Warnf("Invalid tick rate %d, fallback to platform default", cfg.Emulation.TickRate)
		cfg.Emulation.TickRate = 0
	}
	cfg.Video.Check()
	cfg.Input.Check()
}

// Platform returns the emulated platform.
func (cfg *Config) Platform() hw.Platform {
	return hw.NewPlatform(cfg.Emulation.Platform).WithTickRate(cfg.Emulation.TickRate)
}

// RandSource returns the random source for the RND instruction, nil if it
// should be randomly seeded.
func (cfg *Config) RandSource() rand.Source {
	if cfg.Emulation.Seed == 0 {
		return nil
	}
	return rand.NewPCG(cfg.Emulation.Seed, cfg.Emulation.Seed)
}

// ConfigDir returns the chipster configuration directory, creating it if
// necessary. It returns an empty string if it can't be created.
var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("chipster")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Warnf("failed to create directory %s: %v", dir, err)
		return ""
	}
	return dir
})

const cfgFilename = "config.toml"

// DecodeConfig reads a TOML configuration. Settings missing from r keep their
// default value.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return DefaultConfig(), err
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.Warnf("unknown configuration key %q", key.String())
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the chipster config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	dir := ConfigDir()
	if dir == "" {
		return DefaultConfig()
	}

	path := filepath.Join(dir, cfgFilename)
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.Warnf("failed to open config: %v", err)
		}
		return DefaultConfig()
	}
	defer f.Close()

	cfg, err := DecodeConfig(f)
	if err != nil {
		log.ModEmu.Warnf("invalid config file %s, using defaults: %v", path, err)
		return DefaultConfig()
	}
	log.ModEmu.InfoZ("config loaded").String("path", path).End()
	return cfg
}

// WriteConfig writes cfg as TOML to w.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// SaveConfig into chipster config directory.
func SaveConfig(cfg Config) (string, error) {
	dir := ConfigDir()
	if dir == "" {
		return "", errors.New("no config directory")
	}

	buf, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, cfgFilename)
	return path, os.WriteFile(path, buf, 0o644)
}
