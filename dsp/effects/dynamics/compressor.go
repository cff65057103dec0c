package dynamics

import (
	"fmt"
	"math"
)

const (
	defaultCompressorThreshold = 0.5
	defaultCompressorRatio     = 3.0
	defaultCompressorAttack    = 0.01
	defaultCompressorRelease   = 0.001
)

// Compressor is a stereo-linked peak compressor working on linear levels.
//
// For a peak p above the threshold T the target gain is
// (T + (p-T)/ratio) / p. The applied gain moves toward the target by the
// attack coefficient when falling and by the release coefficient when
// rising, once per sample.
type Compressor struct {
	threshold float64
	ratio     float64
	attack    float64
	release   float64

	gain float64
}

// CompressorOption mutates compressor construction parameters.
type CompressorOption func(*Compressor) error

// WithThreshold sets the linear threshold in (0, 1].
func WithThreshold(threshold float64) CompressorOption {
	return func(c *Compressor) error {
		if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
			return fmt.Errorf("compressor threshold must be in (0, 1]: %f", threshold)
		}
		c.threshold = threshold
		return nil
	}
}

// WithRatio sets the compression ratio, at least 1.
func WithRatio(ratio float64) CompressorOption {
	return func(c *Compressor) error {
		if ratio < 1 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			return fmt.Errorf("compressor ratio must be >= 1: %f", ratio)
		}
		c.ratio = ratio
		return nil
	}
}

// WithSmoothing sets the per-sample attack and release coefficients, each in
// (0, 1].
func WithSmoothing(attack, release float64) CompressorOption {
	return func(c *Compressor) error {
		if attack <= 0 || attack > 1 || release <= 0 || release > 1 {
			return fmt.Errorf("compressor smoothing must be in (0, 1]: attack=%f release=%f", attack, release)
		}
		c.attack = attack
		c.release = release
		return nil
	}
}

// NewCompressor returns a compressor with threshold 0.5, ratio 3:1, attack
// 0.01 and release 0.001 unless overridden.
func NewCompressor(opts ...CompressorOption) (*Compressor, error) {
	c := &Compressor{
		threshold: defaultCompressorThreshold,
		ratio:     defaultCompressorRatio,
		attack:    defaultCompressorAttack,
		release:   defaultCompressorRelease,
		gain:      1,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// TargetGain returns the static gain the compressor converges to for peak.
func (c *Compressor) TargetGain(peak float64) float64 {
	if peak <= c.threshold {
		return 1
	}

	return (c.threshold + (peak-c.threshold)/c.ratio) / peak
}

// ProcessStereo compresses one stereo sample pair with a shared gain.
func (c *Compressor) ProcessStereo(left, right float64) (float64, float64) {
	g := c.step(math.Max(math.Abs(left), math.Abs(right)))
	return left * g, right * g
}

// ProcessSample compresses one mono sample.
func (c *Compressor) ProcessSample(x float64) float64 {
	return x * c.step(math.Abs(x))
}

// Gain returns the currently applied linear gain.
func (c *Compressor) Gain() float64 { return c.gain }

// Reset returns the gain to unity.
func (c *Compressor) Reset() { c.gain = 1 }

func (c *Compressor) step(peak float64) float64 {
	target := c.TargetGain(peak)
	if target < c.gain {
		c.gain += (target - c.gain) * c.attack
	} else {
		c.gain += (target - c.gain) * c.release
	}

	return c.gain
}
