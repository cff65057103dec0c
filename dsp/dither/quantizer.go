package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Quantizer maps samples in [-1, 1] to signed integers of a fixed bit
// depth. It keeps per-stream error state; use one per channel when shaping.
type Quantizer struct {
	bitDepth   int
	ditherType Type
	shaping    bool
	rng        *rand.Rand

	full    float64
	lo, hi  int
	lastErr float64
}

// NewQuantizer creates a quantizer for 2..32 bits. The default is
// triangular dither without shaping.
func NewQuantizer(bitDepth int, opts ...Option) (*Quantizer, error) {
	if bitDepth < 2 || bitDepth > 32 {
		return nil, fmt.Errorf("dither: bit depth must be in [2, 32]: %d", bitDepth)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bitDepth:   bitDepth,
		ditherType: cfg.ditherType,
		shaping:    cfg.shaping,
		rng:        cfg.rng,
		full:       math.Exp2(float64(bitDepth-1)) - 1,
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	q.hi = int(q.full)
	q.lo = -q.hi - 1

	return q, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither distribution.
func (q *Quantizer) Type() Type { return q.ditherType }

// Quantize returns the integer code for x. Out-of-range input saturates.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) {
		x = 0
	}

	scaled := x * q.full
	if q.shaping {
		scaled -= q.lastErr
	}

	v := int(math.Round(scaled + q.noise()))
	v = max(q.lo, min(q.hi, v))

	if q.shaping {
		// Clamp the fed-back error so saturation cannot wind it up.
		q.lastErr = math.Max(-1, math.Min(1, float64(v)-scaled))
	}

	return v
}

// QuantizeBlock quantizes src into dst, which must be at least as long.
func (q *Quantizer) QuantizeBlock(dst []int, src []float32) {
	for i, x := range src {
		dst[i] = q.Quantize(float64(x))
	}
}

// Reset clears the shaping error.
func (q *Quantizer) Reset() { q.lastErr = 0 }

func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case TypeRectangular:
		return q.rng.Float64() - 0.5
	case TypeTriangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
