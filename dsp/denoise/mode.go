package denoise

import (
	"fmt"
	"strings"
)

// Mode selects a subtraction preset.
type Mode int

const (
	ModeOff Mode = iota
	ModeLight
	ModeModerate
	ModeStrong
	ModeAdaptive
)

// Params are the subtraction parameters of a mode.
type Params struct {
	Strength        float64
	OverSubtraction float64
	SpectralFloor   float64
}

var modeParams = [...]Params{
	ModeOff:      {Strength: 0, OverSubtraction: 0, SpectralFloor: 1},
	ModeLight:    {Strength: 0.5, OverSubtraction: 1.0, SpectralFloor: 0.30},
	ModeModerate: {Strength: 0.75, OverSubtraction: 1.5, SpectralFloor: 0.15},
	ModeStrong:   {Strength: 1.0, OverSubtraction: 2.0, SpectralFloor: 0.05},
	ModeAdaptive: {Strength: 1.0, OverSubtraction: 1.5, SpectralFloor: 0.10},
}

var modeNames = [...]string{"off", "light", "moderate", "strong", "adaptive"}

// Params returns the preset for m. Unknown modes map to off.
func (m Mode) Params() Params {
	if m < ModeOff || m > ModeAdaptive {
		return modeParams[ModeOff]
	}
	return modeParams[m]
}

func (m Mode) String() string {
	if m < ModeOff || m > ModeAdaptive {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a mode name to its Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeOff, fmt.Errorf("denoise: unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < ModeOff || m > ModeAdaptive {
		return nil, fmt.Errorf("denoise: invalid mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
