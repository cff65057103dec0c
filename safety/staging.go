package safety

import (
	"math"

	"github.com/cwbudde/algo-hifi/preset"
)

const (
	// preampKnee is the peak boost above which the pre-amp attenuates.
	preampKnee = 1.5
	// preampSlope is the attenuation in dB per dB of boost above the knee.
	preampSlope = 0.65
	// limiterKnee is the peak boost above which the limiter engages.
	limiterKnee = 0.5
	// LimiterThresholdDB is the fixed limiter ceiling in dBFS.
	LimiterThresholdDB = -0.5
	// preampHysteresisDB is the smallest pre-amp change pushed to the chain.
	preampHysteresisDB = 0.05
)

// State is the derived gain staging for the current settings.
type State struct {
	PeakGainDB         float64 `json:"peakGainDb"`
	PreampDB           float64 `json:"preampDb"`
	LimiterEnabled     bool    `json:"limiterEnabled"`
	LimiterThresholdDB float64 `json:"limiterThresholdDb"`
}

// Neutral is the state of a disabled equalizer.
func Neutral() State {
	return State{LimiterThresholdDB: LimiterThresholdDB}
}

// PeakGain returns the largest boost across the band gains and the
// positive parts of the tone controls.
func PeakGain(gains preset.Gains, bassDB, trebleDB float64) float64 {
	peak := math.Max(math.Max(bassDB, 0), math.Max(trebleDB, 0))
	for _, g := range gains {
		peak = math.Max(peak, g)
	}

	return peak
}

// Compute derives pre-amp and limiter settings from the curve.
func Compute(gains preset.Gains, bassDB, trebleDB float64) State {
	peak := PeakGain(gains, bassDB, trebleDB)

	st := State{
		PeakGainDB:         peak,
		LimiterEnabled:     peak > limiterKnee,
		LimiterThresholdDB: LimiterThresholdDB,
	}
	if peak > preampKnee {
		st.PreampDB = -(peak - preampKnee) * preampSlope
	}

	return st
}
