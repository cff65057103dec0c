package hifi

import (
	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/delay"
	"github.com/cwbudde/algo-hifi/dsp/effects/spatial"
)

// MaxBassGainDB is the bass boost at which the shelf is blended in fully.
const MaxBassGainDB = 12.0

// Config is the user-facing effect configuration. It is copied by value into
// the processor; the render path never observes a partial update.
type Config struct {
	SpatialWidth        float64 `json:"spatialWidth"`     // [0, 1]
	ReverbMix           float64 `json:"reverbMix"`        // [0, 1], applied by the output chain
	CrossfeedLevel      float64 `json:"crossfeedLevel"`   // [0, 1]
	CrossfeedDelayMs    float64 `json:"crossfeedDelayMs"` // [0, delay.MaxDelayMs]
	BassGainDB          float64 `json:"bassGainDb"`       // [0, 12]
	DynamicRangeEnabled bool    `json:"dynamicRangeEnabled"`
	LoudnessNormEnabled bool    `json:"loudnessNormEnabled"`
}

// DefaultConfig returns a neutral configuration: every stage but the soft
// clipper is inactive.
func DefaultConfig() Config {
	return Config{CrossfeedDelayMs: spatial.DefaultCrossfeedDelayMs}
}

// Clamped returns c with every field forced into its valid range. NaN
// values collapse to the lower bound.
func (c Config) Clamped() Config {
	c.SpatialWidth = core.Clamp(c.SpatialWidth, 0, 1)
	c.ReverbMix = core.Clamp(c.ReverbMix, 0, 1)
	c.CrossfeedLevel = core.Clamp(c.CrossfeedLevel, 0, 1)
	c.CrossfeedDelayMs = core.Clamp(c.CrossfeedDelayMs, 0, delay.MaxDelayMs)
	c.BassGainDB = core.Clamp(c.BassGainDB, 0, MaxBassGainDB)
	return c
}

// Active reports whether any stage besides the soft clipper would run.
func (c Config) Active() bool {
	return c.SpatialWidth > 0 || c.CrossfeedLevel > 0 || c.BassGainDB > 0 ||
		c.DynamicRangeEnabled || c.LoudnessNormEnabled
}
