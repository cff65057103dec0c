package dynamics

import (
	"fmt"
	"math"
)

const (
	defaultLimiterThresholdDB = -0.5
	defaultLimiterReleaseMs   = 50.0

	minLimiterThresholdDB = -24.0
	maxLimiterThresholdDB = 0.0
)

// Limiter is an instant-attack stereo peak limiter. Whenever the gained
// peak would exceed the ceiling the gain drops to exactly ceiling/peak, so
// the output never exceeds the threshold. Recovery toward unity follows a
// one-pole release.
type Limiter struct {
	sampleRate  float64
	thresholdDB float64
	releaseMs   float64

	ceiling      float64
	releaseCoeff float64
	gain         float64
}

// NewLimiter creates a limiter with a -0.5 dBFS ceiling and 50 ms release.
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("limiter sample rate must be positive and finite: %f", sampleRate)
	}

	l := &Limiter{
		sampleRate: sampleRate,
		releaseMs:  defaultLimiterReleaseMs,
		gain:       1,
	}

	if err := l.SetThreshold(defaultLimiterThresholdDB); err != nil {
		return nil, err
	}

	l.updateRelease()

	return l, nil
}

// SetThreshold sets the ceiling in dBFS, within [-24, 0].
func (l *Limiter) SetThreshold(dB float64) error {
	if dB < minLimiterThresholdDB || dB > maxLimiterThresholdDB || math.IsNaN(dB) {
		return fmt.Errorf("limiter threshold must be in [%g, %g] dBFS: %f",
			minLimiterThresholdDB, maxLimiterThresholdDB, dB)
	}

	l.thresholdDB = dB
	l.ceiling = math.Pow(10, dB/20)

	return nil
}

// Threshold returns the ceiling in dBFS.
func (l *Limiter) Threshold() float64 { return l.thresholdDB }

// SetSampleRate updates the release coefficient for a new rate.
func (l *Limiter) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("limiter sample rate must be positive and finite: %f", sampleRate)
	}

	l.sampleRate = sampleRate
	l.updateRelease()

	return nil
}

// ProcessStereo limits one stereo sample pair with a shared gain.
func (l *Limiter) ProcessStereo(left, right float64) (float64, float64) {
	g := l.step(math.Max(math.Abs(left), math.Abs(right)))
	return left * g, right * g
}

// ProcessSample limits one mono sample.
func (l *Limiter) ProcessSample(x float64) float64 {
	return x * l.step(math.Abs(x))
}

// Gain returns the currently applied linear gain.
func (l *Limiter) Gain() float64 { return l.gain }

// Reset returns the gain to unity.
func (l *Limiter) Reset() { l.gain = 1 }

func (l *Limiter) step(peak float64) float64 {
	l.gain += (1 - l.gain) * l.releaseCoeff

	if peak*l.gain > l.ceiling {
		l.gain = l.ceiling / peak
	}

	return l.gain
}

func (l *Limiter) updateRelease() {
	l.releaseCoeff = 1 - math.Exp(-1/(l.releaseMs*0.001*l.sampleRate))
}
