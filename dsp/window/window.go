// Package window generates the tapering windows used by the STFT stages.
//
// Only the windows the analysis and noise-reduction paths need are provided.
// Coefficients are generated once at construction time; applying a window in
// a render path uses [ApplyCoefficientsInPlace] which does not allocate.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	default:
		return "unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	denom := float64(length - 1)
	if cfg.periodic || length == 1 {
		denom = float64(length)
	}

	out := make([]float64, length)
	for i := range out {
		phase := 2 * math.Pi * float64(i) / denom
		switch t {
		case TypeHann:
			out[i] = 0.5 - 0.5*math.Cos(phase)
		case TypeHamming:
			out[i] = 0.54 - 0.46*math.Cos(phase)
		default:
			out[i] = 1
		}
	}

	return out
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHann, size, opts...), validateLength(size)
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	coeffs := Generate(t, len(buf), opts...)
	if len(coeffs) != len(buf) || len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, coeffs)
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return ErrLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// CoherentGain returns the mean window value, the amplitude scale a
// windowed sinusoid experiences in its spectral bin.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, ErrEmpty
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	if sum == 0 {
		return 0, ErrZeroGain
	}

	return sum / float64(len(coeffs)), nil
}

// OverlapAddGain returns the constant sum of squared analysis/synthesis
// windows for frames spaced hop samples apart. Dividing the overlap-add
// output by this value restores unity gain.
func OverlapAddGain(coeffs []float64, hop int) (float64, error) {
	if len(coeffs) == 0 {
		return 0, ErrEmpty
	}

	if hop <= 0 || hop > len(coeffs) {
		return 0, ErrHopSize
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c * c
	}

	if sum == 0 {
		return 0, ErrZeroGain
	}

	return sum / float64(hop), nil
}
