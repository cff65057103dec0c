// Package loudness measures programme loudness per ITU-R BS.1770 / EBU R128
// for the file-analysis path.
//
// The meter K-weights every channel, accumulates 100 ms energy steps and
// derives gated integrated loudness (400 ms blocks, 75% overlap) and the
// loudness range from 3 s short-term windows.
package loudness

import (
	"math"
	"slices"

	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/filter/biquad"
	"github.com/cwbudde/algo-hifi/dsp/filter/design"
)

const (
	// K-weighting filter parameters from BS.1770.
	kWeightingShelfFreq = 1500.0
	kWeightingShelfGain = 4.0
	kWeightingHpfFreq   = 38.0

	stepDuration    = 0.1
	blockSteps      = 4  // 400 ms gating block
	shortTermSteps  = 30 // 3 s short-term window
	absThreshold    = -70.0
	relThreshold    = -10.0
	lraRelThreshold = -20.0
	lraLowPercent   = 0.10
	lraHighPercent  = 0.95

	// Floor reported when there is nothing above the gates.
	Floor = -120.0
)

// Meter accumulates K-weighted energy of an interleaved stream.
type Meter struct {
	sampleRate float64
	channels   int

	shelf []*biquad.Section
	hpf   []*biquad.Section

	stepSamples int
	stepFill    int
	stepEnergy  float64
	steps       []float64 // per-step mean square summed over channels
	peak        float64
}

// NewMeter creates a meter. Defaults are 44.1 kHz stereo.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := core.ApplyProcessorOptions(opts...)

	m := &Meter{
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		shelf:       make([]*biquad.Section, cfg.Channels),
		hpf:         make([]*biquad.Section, cfg.Channels),
		stepSamples: max(1, int(math.Round(stepDuration*cfg.SampleRate))),
	}

	q := 1 / math.Sqrt2
	shelf := design.HighShelf(kWeightingShelfFreq, kWeightingShelfGain, q, cfg.SampleRate)
	hpf := design.Highpass(kWeightingHpfFreq, q, cfg.SampleRate)

	for i := range m.channels {
		m.shelf[i] = biquad.NewSection(shelf)
		m.hpf[i] = biquad.NewSection(hpf)
	}

	return m
}

// Reset clears all accumulated state.
func (m *Meter) Reset() {
	for i := range m.channels {
		m.shelf[i].Reset()
		m.hpf[i].Reset()
	}

	m.stepFill = 0
	m.stepEnergy = 0
	m.steps = m.steps[:0]
	m.peak = 0
}

// ProcessFrame adds one frame holding one sample per channel.
func (m *Meter) ProcessFrame(frame []float64) {
	if len(frame) < m.channels {
		return
	}

	for i := range m.channels {
		x := frame[i]
		m.peak = math.Max(m.peak, math.Abs(x))

		y := m.hpf[i].ProcessSample(m.shelf[i].ProcessSample(x))
		m.stepEnergy += y * y
	}

	m.stepFill++
	if m.stepFill == m.stepSamples {
		m.steps = append(m.steps, m.stepEnergy/float64(m.stepSamples))
		m.stepFill = 0
		m.stepEnergy = 0
	}
}

// ProcessInterleaved adds a block of interleaved frames.
func (m *Meter) ProcessInterleaved(block []float64) {
	for i := 0; i+m.channels <= len(block); i += m.channels {
		m.ProcessFrame(block[i : i+m.channels])
	}
}

// Momentary returns the loudness of the latest 400 ms block in LUFS.
func (m *Meter) Momentary() float64 {
	if len(m.steps) < blockSteps {
		return Floor
	}

	return toLUFS(mean(m.steps[len(m.steps)-blockSteps:]))
}

// Integrated returns the gated integrated loudness in LUFS.
func (m *Meter) Integrated() float64 {
	blocks := windows(m.steps, blockSteps)
	return gatedMean(blocks, relThreshold)
}

// LoudnessRange returns the spread between the 10th and 95th percentile of
// gated short-term loudness, in LU.
func (m *Meter) LoudnessRange() float64 {
	short := windows(m.steps, shortTermSteps)
	if len(short) == 0 {
		return 0
	}

	gate := gatedMean(short, 0) + lraRelThreshold

	var levels []float64
	for _, e := range short {
		if l := toLUFS(e); l > absThreshold && l > gate {
			levels = append(levels, l)
		}
	}

	if len(levels) < 2 {
		return 0
	}

	slices.Sort(levels)

	return percentile(levels, lraHighPercent) - percentile(levels, lraLowPercent)
}

// Peak returns the maximum absolute sample value since Reset.
func (m *Meter) Peak() float64 {
	return m.peak
}

// windows returns the mean energy of every run of n consecutive steps.
func windows(steps []float64, n int) []float64 {
	if len(steps) < n {
		return nil
	}

	out := make([]float64, 0, len(steps)-n+1)
	sum := 0.0
	for i, e := range steps {
		sum += e
		if i >= n {
			sum -= steps[i-n]
		}
		if i >= n-1 {
			out = append(out, math.Max(sum, 0)/float64(n))
		}
	}

	return out
}

// gatedMean applies the absolute gate, then a relative gate offset by rel
// below the absolute-gated mean, and returns the mean in LUFS.
func gatedMean(energies []float64, rel float64) float64 {
	var sum float64
	var n int
	for _, e := range energies {
		if toLUFS(e) > absThreshold {
			sum += e
			n++
		}
	}

	if n == 0 {
		return Floor
	}

	if rel == 0 {
		return toLUFS(sum / float64(n))
	}

	gate := toLUFS(sum/float64(n)) + rel
	sum, n = 0, 0
	for _, e := range energies {
		if l := toLUFS(e); l > absThreshold && l > gate {
			sum += e
			n++
		}
	}

	if n == 0 {
		return Floor
	}

	return toLUFS(sum / float64(n))
}

func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Round(p * float64(len(sorted)-1)))
	return sorted[idx]
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}

	return sum / float64(len(v))
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return Floor
	}

	return -0.691 + 10.0*math.Log10(meanSquare)
}
