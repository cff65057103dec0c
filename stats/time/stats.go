// Package time computes time-domain descriptors of a decoded mono signal
// for the file-analysis quality estimator.
package time

import (
	"math"

	"github.com/cwbudde/algo-hifi/dsp/core"
)

// DefaultClipLevel is the absolute sample value treated as clipped.
const DefaultClipLevel = 0.999

// Stats summarises one signal. Levels are linear; the dB accessors floor
// at core.SilenceDB.
type Stats struct {
	Length           int
	RMS              float64
	Peak             float64
	CrestFactor      float64 // Peak / RMS, 0 for silence
	ClipRatio        float64 // fraction of samples at or above the clip level
	ZeroCrossingRate float64 // sign changes per sample
	DC               float64
}

// RMSDB returns the RMS level in dBFS.
func (s Stats) RMSDB() float64 { return core.LinearToDB(s.RMS) }

// PeakDB returns the peak level in dBFS.
func (s Stats) PeakDB() float64 { return core.LinearToDB(s.Peak) }

// CrestFactorDB returns the crest factor in dB.
func (s Stats) CrestFactorDB() float64 { return core.LinearToDB(s.CrestFactor) }

// Calculate computes Stats with DefaultClipLevel.
func Calculate(signal []float64) Stats {
	return CalculateWithClip(signal, DefaultClipLevel)
}

// CalculateWithClip computes Stats in one pass, counting samples whose
// magnitude reaches clipLevel.
func CalculateWithClip(signal []float64, clipLevel float64) Stats {
	s := Stats{Length: len(signal)}
	if s.Length == 0 {
		return s
	}

	var sum, energy float64
	clipped, crossings := 0, 0
	prev := signal[0]

	for _, x := range signal {
		sum += x
		energy += x * x

		a := math.Abs(x)
		s.Peak = math.Max(s.Peak, a)
		if a >= clipLevel {
			clipped++
		}
		if prev*x < 0 {
			crossings++
		}
		prev = x
	}

	n := float64(s.Length)
	s.RMS = math.Sqrt(energy / n)
	s.DC = sum / n
	s.ClipRatio = float64(clipped) / n

	if s.Length > 1 {
		s.ZeroCrossingRate = float64(crossings) / (n - 1)
	}
	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
	}

	return s
}

// RMS returns the root-mean-square of the signal, 0 when empty.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	energy := 0.0
	for _, x := range signal {
		energy += x * x
	}

	return math.Sqrt(energy / float64(len(signal)))
}

// Envelope returns the RMS of consecutive non-overlapping windows of size
// samples. A trailing partial window is dropped.
func Envelope(signal []float64, size int) []float64 {
	if size <= 0 || len(signal) < size {
		return nil
	}

	out := make([]float64, len(signal)/size)
	for i := range out {
		out[i] = RMS(signal[i*size : (i+1)*size])
	}

	return out
}
