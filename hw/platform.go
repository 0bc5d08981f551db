package hw

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Variant -linecomment

// Variant identifies a hardware/interpreter flavor.
type Variant uint8

const (
	CosmacVIP Variant = iota // cosmac-vip
	Modern                   // modern
	Chip48                   // chip-48
	SuperChip                // super-chip
	XoChip                   // xo-chip

	numVariants
)

// Variants returns all supported variants.
func Variants() []Variant {
	vs := make([]Variant, numVariants)
	for i := range vs {
		vs[i] = Variant(i)
	}
	return vs
}

// ParseVariant returns the variant with the given name (see String).
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants() {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown platform variant %q", s)
}

func (v Variant) MarshalText() ([]byte, error) {
	if v >= numVariants {
		return nil, fmt.Errorf("invalid platform variant %d", v)
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	pv, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = pv
	return nil
}

// Quirks is a set of behavior toggles, each one affects a single instruction.
type Quirks uint8

const (
	VfReset                 Quirks = 1 << iota // 8XY1/8XY2/8XY3 clear VF
	LoadStoreIncrementIndex                    // FX55/FX65 leave I at I+X+1
	WaitForBlank                               // DXYN ends the current frame
	WrapSprites                                // DXYN wraps pixels instead of clipping them
	ShiftUsesSecondOperand                     // 8XY6/8XYE shift VX in place, VY is ignored
	JumpAddsRegisterX                          // BXNN jumps to XNN + VX instead of NNN + V0

	numQuirks = 6
)

var quirkNames = [numQuirks]string{
	"vf-reset",
	"load-store-inc-i",
	"wait-for-blank",
	"wrap-sprites",
	"shift-vx",
	"jump-vx",
}

func (q Quirks) String() string {
	var names []string
	for i := range numQuirks {
		if q&(1<<i) != 0 {
			names = append(names, quirkNames[i])
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Platform describes the hardware an emulated program runs on. Once created a
// Platform is never modified.
type Platform struct {
	Variant  Variant
	Width    int // framebuffer width in pixels
	Height   int // framebuffer height in pixels
	Quirks   Quirks
	TickRate int // instructions per 60Hz frame
}

// NewPlatform returns the platform configuration for the given variant.
func NewPlatform(v Variant) Platform {
	switch v {
	case CosmacVIP:
		return Platform{
			Variant:  v,
			Width:    64,
			Height:   32,
			Quirks:   VfReset | WaitForBlank | LoadStoreIncrementIndex,
			TickRate: 15,
		}
	case Modern:
		return Platform{
			Variant:  v,
			Width:    64,
			Height:   32,
			Quirks:   VfReset | WaitForBlank,
			TickRate: 12,
		}
	case Chip48:
		return Platform{
			Variant:  v,
			Width:    64,
			Height:   32,
			Quirks:   ShiftUsesSecondOperand | JumpAddsRegisterX,
			TickRate: 30,
		}
	case SuperChip:
		return Platform{
			Variant:  v,
			Width:    128,
			Height:   64,
			Quirks:   0,
			TickRate: 30,
		}
	case XoChip:
		return Platform{
			Variant:  v,
			Width:    128,
			Height:   64,
			Quirks:   WrapSprites,
			TickRate: 100,
		}
	}
	panic(fmt.Sprintf("unknown platform variant %d", v))
}

// DefaultPlatform is the original COSMAC VIP interpreter.
func DefaultPlatform() Platform {
	return NewPlatform(CosmacVIP)
}

// WithTickRate returns a copy of p running n instructions per frame. n <= 0
// keeps the variant default.
func (p Platform) WithTickRate(n int) Platform {
	if n > 0 {
		p.TickRate = n
	}
	return p
}

func (p Platform) HasQuirk(q Quirks) bool {
	return p.Quirks&q == q
}

func (p Platform) String() string {
	return fmt.Sprintf("%s %dx%d tickrate=%d quirks=%s", p.Variant, p.Width, p.Height, p.TickRate, p.Quirks)
}
