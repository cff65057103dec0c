package spectrum

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-hifi/dsp/window"
)

var errFrameLength = errors.New("spectrum: frame length does not match transform size")

// Transformer computes windowed magnitude spectra of a fixed size.
type Transformer struct {
	size  int
	plan  *algofft.Plan[complex128]
	win   []float64
	scale float64

	in, out []complex128
	re, im  []float64
	mag     []float64
}

// NewTransformer creates a transformer of the given size using a periodic
// analysis window of type t.
func NewTransformer(size int, t window.Type) (*Transformer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum: size must be a power of two >= 2: %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: init fft plan: %w", err)
	}

	win := window.Generate(t, size, window.WithPeriodic())
	gain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	bins := size/2 + 1

	return &Transformer{
		size:  size,
		plan:  plan,
		win:   win,
		scale: 2 / (gain * float64(size)),
		in:    make([]complex128, size),
		out:   make([]complex128, size),
		re:    make([]float64, bins),
		im:    make([]float64, bins),
		mag:   make([]float64, bins),
	}, nil
}

// Size returns the transform length.
func (t *Transformer) Size() int { return t.size }

// Bins returns the number of one-sided bins, size/2 + 1.
func (t *Transformer) Bins() int { return len(t.mag) }

// BinHz returns the bin spacing at sampleRate.
func (t *Transformer) BinHz(sampleRate float64) float64 {
	return sampleRate / float64(t.size)
}

// Magnitude windows frame, transforms it and returns the normalised
// one-sided magnitude spectrum. The returned slice is owned by t and is
// overwritten by the next call. Zero-alloc.
func (t *Transformer) Magnitude(frame []float64) ([]float64, error) {
	if len(frame) != t.size {
		return nil, fmt.Errorf("%w: %d != %d", errFrameLength, len(frame), t.size)
	}

	for i, x := range frame {
		t.in[i] = complex(x*t.win[i], 0)
	}

	if err := t.plan.Forward(t.out, t.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for k := range t.mag {
		t.re[k] = real(t.out[k]) * t.scale
		t.im[k] = imag(t.out[k]) * t.scale
	}

	vecmath.Magnitude(t.mag, t.re, t.im)

	return t.mag, nil
}
