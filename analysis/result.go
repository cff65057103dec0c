package analysis

import "github.com/cwbudde/algo-hifi/preset"

// Mode tells which path produced a Result.
type Mode int

const (
	ModeRealtime Mode = iota
	ModeFile
)

func (m Mode) String() string {
	if m == ModeFile {
		return "file"
	}
	return "realtime"
}

// Result is a complete analysis snapshot. It is a plain value; copies are
// independent.
type Result struct {
	SpectrumEnergy   [NumBands]float64 `json:"spectrumEnergy"`
	Genre            Genre             `json:"genre"`
	RecommendedEQ    preset.Gains      `json:"recommendedEQ"`
	DynamicRange     float64           `json:"dynamicRange"`
	AverageLoudness  float64           `json:"averageLoudness"`
	NoiseFloor       float64           `json:"noiseFloor"`
	NeedsDenoising   bool              `json:"needsDenoising"`
	BassRatio        float64           `json:"bassRatio"`
	TrebleRatio      float64           `json:"trebleRatio"`
	VocalPresence    float64           `json:"vocalPresence"`
	SpectralCentroid float64           `json:"spectralCentroid"`
	Mode             Mode              `json:"mode"`

	// File mode only.
	BPM            float64 `json:"bpm,omitempty"`
	IntegratedLUFS float64 `json:"integratedLufs,omitempty"`
}
