package bank

import (
	"math"

	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/filter/biquad"
	"github.com/cwbudde/algo-hifi/dsp/filter/design"
)

const (
	// MinGainDB and MaxGainDB bound every band gain.
	MinGainDB = -12.0
	MaxGainDB = 12.0

	// DefaultQ is the shared band quality factor.
	DefaultQ = 1.41

	// MaxChannels is the widest interleaved layout a Filter processes.
	MaxChannels = 2

	// unityThreshold is the peaking gain below which a band is an exact
	// pass-through.
	unityThreshold = 0.001
)

// FilterType selects the band response.
type FilterType int

const (
	Peaking FilterType = iota
	LowShelf
	HighShelf
	LowPass
)

// String returns the lower-case name of the filter type.
func (t FilterType) String() string {
	switch t {
	case Peaking:
		return "peaking"
	case LowShelf:
		return "lowShelf"
	case HighShelf:
		return "highShelf"
	case LowPass:
		return "lowPass"
	default:
		return "unknown"
	}
}

// Band holds the parameters of one EQ band.
type Band struct {
	Frequency  float64 // centre or corner frequency in Hz
	Gain       float64 // dB, clamped to [MinGainDB, MaxGainDB]
	Q          float64
	Type       FilterType
	SampleRate float64
}

// Filter is a single EQ band with per-channel DF-II-T state.
type Filter struct {
	band   Band
	coeffs biquad.Coefficients
	states [MaxChannels]biquad.State
}

// NewFilter creates a filter for b. The gain is clamped and a non-positive
// Q is replaced with DefaultQ.
func NewFilter(b Band) *Filter {
	if b.Q <= 0 || !core.IsFinite(b.Q) {
		b.Q = DefaultQ
	}

	b.Gain = clampGain(b.Gain)
	f := &Filter{band: b}
	f.updateCoefficients()

	return f
}

// Band returns a copy of the filter parameters.
func (f *Filter) Band() Band {
	return f.band
}

// Coefficients returns the active biquad coefficients.
func (f *Filter) Coefficients() biquad.Coefficients {
	return f.coeffs
}

// SetGain sets the band gain in dB, clamped to [MinGainDB, MaxGainDB].
// Coefficients are recomputed only when the clamped gain changes.
func (f *Filter) SetGain(gainDB float64) {
	gainDB = clampGain(gainDB)
	if gainDB == f.band.Gain {
		return
	}

	f.band.Gain = gainDB
	f.updateCoefficients()
}

// SetSampleRate updates the sample rate. On change the coefficients are
// recomputed and all channel state is cleared.
func (f *Filter) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) || sampleRate == f.band.SampleRate {
		return
	}

	f.band.SampleRate = sampleRate
	f.updateCoefficients()
	f.Reset()
}

// Reset zeroes every channel state and keeps the coefficients.
func (f *Filter) Reset() {
	for i := range f.states {
		f.states[i].Reset()
	}
}

// Process filters one sample of channel ch. Out-of-range channels pass x
// through unchanged.
func (f *Filter) Process(x float64, ch int) float64 {
	if ch < 0 || ch >= MaxChannels {
		return x
	}

	return f.coeffs.Process(x, &f.states[ch])
}

// ProcessBuffer filters an interleaved mono or stereo buffer in place.
func (f *Filter) ProcessBuffer(buf []float32, frames, channels int) {
	frames = core.Frames(buf, frames, channels)
	if frames == 0 || f.coeffs.IsIdentity() {
		return
	}

	for ch := 0; ch < channels; ch++ {
		f.coeffs.ProcessInterleaved(buf, frames, channels, ch, &f.states[ch])
	}
}

// MagnitudeDB returns the band response at freqHz in dB.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.coeffs.MagnitudeDB(freqHz, f.band.SampleRate)
}

func (f *Filter) updateCoefficients() {
	b := f.band

	switch b.Type {
	case Peaking:
		if math.Abs(b.Gain) < unityThreshold {
			f.coeffs = biquad.Identity()
			return
		}
		f.coeffs = design.Peak(b.Frequency, b.Gain, b.Q, b.SampleRate)
	case LowShelf:
		f.coeffs = design.LowShelf(b.Frequency, b.Gain, b.Q, b.SampleRate)
	case HighShelf:
		f.coeffs = design.HighShelf(b.Frequency, b.Gain, b.Q, b.SampleRate)
	case LowPass:
		f.coeffs = design.Lowpass(b.Frequency, b.Q, b.SampleRate)
	default:
		f.coeffs = biquad.Identity()
	}
}

func clampGain(gainDB float64) float64 {
	if math.IsNaN(gainDB) {
		return 0
	}

	return core.Clamp(gainDB, MinGainDB, MaxGainDB)
}
