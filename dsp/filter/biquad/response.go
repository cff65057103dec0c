package biquad

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hifi/dsp/core"
)

// Response evaluates H(z) on the unit circle at freqHz.
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	z1 := cmplx.Rect(1, -2*math.Pi*freqHz/sampleRate)
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeSquared returns |H(f)|² without complex arithmetic. It expands
// |B(e^jw)|² and |A(e^jw)|² in powers of cos w.
func (c Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	cw := math.Cos(2 * math.Pi * freqHz / sampleRate)

	num := c.B0*c.B0 + c.B1*c.B1 + c.B2*c.B2 +
		2*(c.B0*c.B1+c.B1*c.B2)*cw + 2*c.B0*c.B2*(2*cw*cw-1)
	den := 1 + c.A1*c.A1 + c.A2*c.A2 +
		2*(c.A1+c.A1*c.A2)*cw + 2*c.A2*(2*cw*cw-1)

	if den <= 0 {
		return math.Inf(1)
	}

	return math.Max(num, 0) / den
}

// MagnitudeDB returns the response at freqHz in dB, floored at
// core.SilenceDB for a zero of the transfer function.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return core.LinearPowerToDB(c.MagnitudeSquared(freqHz, sampleRate))
}
