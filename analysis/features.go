package analysis

import (
	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/preset"
)

// NumBands is the number of analysis bands.
const NumBands = 10

// BandCenters are the analysis band centre frequencies in Hz.
var BandCenters = [NumBands]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

const (
	ratioFloorDB = -60.0
	ratioSpanDB  = 180.0
	defaultRatio = 0.33

	vocalOffsetDB = 40.0

	recommendTargetDB = -30.0
	maxAdjustDB       = 6.0

	// DenoiseThresholdDB is the mean noise floor above which denoising is
	// suggested.
	DenoiseThresholdDB = -50.0
)

// Features is the feature vector the genre cascade operates on.
type Features struct {
	Bands            [NumBands]float64
	BassRatio        float64
	TrebleRatio      float64
	VocalPresence    float64
	SpectralVariance float64
	DynamicRange     float64
}

// Derive computes the feature vector from banded energies in dB.
func Derive(bands [NumBands]float64, dynamicRange float64) Features {
	bass := core.Mean(bands[0:3])
	mid := core.Mean(bands[3:7])
	treble := core.Mean(bands[7:10])

	f := Features{
		Bands:            bands,
		BassRatio:        defaultRatio,
		TrebleRatio:      defaultRatio,
		SpectralVariance: core.Variance(bands[:]),
		DynamicRange:     dynamicRange,
	}

	if total := bass + mid + treble; total > -ratioSpanDB {
		span := total - 3*ratioFloorDB
		f.BassRatio = core.Clamp((bass-ratioFloorDB)/span, 0, 1)
		f.TrebleRatio = core.Clamp((treble-ratioFloorDB)/span, 0, 1)
	}

	f.VocalPresence = core.Clamp((core.Mean(bands[5:8])+vocalOffsetDB)/vocalOffsetDB, 0, 1)

	return f
}

// Recommend returns the genre base curve nudged toward a -30 dB band level.
// Each nudge is limited to ±6 dB and the result to the EQ range.
func Recommend(t *preset.Table, genre Genre, bands [NumBands]float64) preset.Gains {
	base, ok := t.GenreCurve(string(genre))
	if !ok {
		base, _ = t.GenreCurve(string(GenreUnknown))
	}

	var out preset.Gains
	for i := range out {
		adjust := core.Clamp(recommendTargetDB-bands[i], -maxAdjustDB, maxAdjustDB)
		out[i] = core.Clamp(base[i]+adjust, preset.MinGainDB, preset.MaxGainDB)
	}

	return out
}
