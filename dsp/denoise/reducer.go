package denoise

import (
	"errors"
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/window"
)

const (
	// FrameSize is the STFT frame length.
	FrameSize = 1024
	// HopSize is the frame advance.
	HopSize = FrameSize / 4
	// LearningFrames is the number of frames used to learn the noise
	// profile.
	LearningFrames = 20

	// MaxChannels is the number of independent channel states.
	MaxChannels = 2

	noiseScale = 1.2

	smoothPrev    = 0.3
	smoothCurrent = 0.7

	minLocalStrength = 0.1
	maxLocalStrength = 1.0

	// Post-learning drift in adaptive mode, applied to bins that look like
	// noise (below driftGate times the estimate).
	driftKeep = 0.999
	driftRate = 0.001
	driftGate = 2.0

	magnitudeFloor = 1e-12
)

var errChannel = errors.New("denoise: channel out of range")

type channelState struct {
	plan *algofft.Plan[complex128]
	spec []complex128

	noise    []float64
	prev     []float64
	learned  int
	learning bool

	in  []float64 // last FrameSize input samples
	acc []float64 // overlap-add accumulator
	out []float64 // hop samples ready for output
	frm []float64 // processed frame scratch
	pos int

	// Hops received since reset, saturating once the input window is full.
	primed int
}

func newChannelState() (*channelState, error) {
	plan, err := algofft.NewPlan64(FrameSize)
	if err != nil {
		return nil, fmt.Errorf("denoise: init fft plan: %w", err)
	}

	bins := FrameSize/2 + 1
	st := &channelState{
		plan:  plan,
		spec:  make([]complex128, FrameSize),
		noise: make([]float64, bins),
		prev:  make([]float64, bins),
		in:    make([]float64, FrameSize),
		acc:   make([]float64, FrameSize),
		out:   make([]float64, HopSize),
		frm:   make([]float64, FrameSize),
	}
	st.reset()

	return st, nil
}

func (st *channelState) reset() {
	core.Zero(st.noise)
	core.Zero(st.prev)
	core.Zero(st.in)
	core.Zero(st.acc)
	core.Zero(st.out)
	st.learned = 0
	st.learning = true
	st.pos = 0
	st.primed = 0
}

// Reducer is a per-channel spectral-subtraction noise reducer.
type Reducer struct {
	mu sync.Mutex

	mode    Mode
	params  Params
	win     []float64
	olaGain float64
	ch      [MaxChannels]*channelState
}

// New creates a reducer in mode off.
func New() (*Reducer, error) {
	win := window.Generate(window.TypeHann, FrameSize, window.WithPeriodic())

	ola, err := window.OverlapAddGain(win, HopSize)
	if err != nil {
		return nil, fmt.Errorf("denoise: %w", err)
	}

	r := &Reducer{
		mode:    ModeOff,
		params:  ModeOff.Params(),
		win:     win,
		olaGain: ola,
	}

	for i := range r.ch {
		st, err := newChannelState()
		if err != nil {
			return nil, err
		}
		r.ch[i] = st
	}

	return r, nil
}

// Mode returns the active mode.
func (r *Reducer) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Enabled reports whether the mode is anything but off.
func (r *Reducer) Enabled() bool { return r.Mode() != ModeOff }

// SetMode switches mode and restarts noise learning on every channel.
// Unknown modes are treated as off.
func (r *Reducer) SetMode(m Mode) {
	if m < ModeOff || m > ModeAdaptive {
		m = ModeOff
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mode = m
	r.params = m.Params()
	r.resetLocked()
}

// Relearn discards the noise profiles and restarts learning.
func (r *Reducer) Relearn() { r.Reset() }

// Reset clears all channel state, including the noise profiles.
func (r *Reducer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Reducer) resetLocked() {
	for _, st := range r.ch {
		st.reset()
	}
}

// IsLearning reports whether channel ch is still learning its profile.
func (r *Reducer) IsLearning(ch int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch < 0 || ch >= MaxChannels {
		return false
	}
	return r.ch[ch].learning
}

// NoiseEstimate returns a copy of channel ch's per-bin noise magnitude.
func (r *Reducer) NoiseEstimate(ch int) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch < 0 || ch >= MaxChannels {
		return nil, fmt.Errorf("%w: %d", errChannel, ch)
	}
	return append([]float64(nil), r.ch[ch].noise...), nil
}

// Latency returns the delay in samples a non-off mode adds.
func (r *Reducer) Latency() int { return FrameSize }

// ProcessFrame runs one analysis/synthesis step on a FrameSize frame of
// channel ch and returns the re-windowed output frame, prior to
// overlap-add normalisation. The returned slice is reused by the next call.
func (r *Reducer) ProcessFrame(ch int, frame []float64) ([]float64, error) {
	if ch < 0 || ch >= MaxChannels {
		return nil, fmt.Errorf("%w: %d", errChannel, ch)
	}
	if len(frame) != FrameSize {
		return nil, fmt.Errorf("denoise: frame length %d != %d", len(frame), FrameSize)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.ch[ch]
	if err := r.processFrame(st, frame, st.frm); err != nil {
		return nil, err
	}
	return st.frm, nil
}

func (r *Reducer) processFrame(st *channelState, frame, dst []float64) error {
	for i, x := range frame {
		st.spec[i] = complex(x*r.win[i], 0)
	}

	if err := st.plan.Forward(st.spec, st.spec); err != nil {
		return fmt.Errorf("denoise: forward fft: %w", err)
	}

	half := FrameSize / 2
	p := r.params
	adaptive := r.mode == ModeAdaptive

	for k := 0; k <= half; k++ {
		mag := math.Hypot(real(st.spec[k]), imag(st.spec[k]))

		if st.learning {
			if st.learned == 0 || mag < st.noise[k] {
				st.noise[k] = mag
			}
			st.prev[k] = mag
			continue
		}

		noise := st.noise[k]
		if adaptive && mag < driftGate*noise {
			noise = noise*driftKeep + mag*driftRate
			st.noise[k] = noise
		}

		local := p.Strength
		if adaptive {
			snr := mag / math.Max(noise, magnitudeFloor)
			local *= core.Clamp(1/math.Max(snr, magnitudeFloor), minLocalStrength, maxLocalStrength)
		}

		clean := math.Max(mag-noise*p.OverSubtraction*local, mag*p.SpectralFloor)
		smoothed := st.prev[k]*smoothPrev + clean*smoothCurrent
		st.prev[k] = smoothed

		gain := 0.0
		if mag > magnitudeFloor {
			gain = smoothed / mag
		}
		st.spec[k] *= complex(gain, 0)
	}

	if st.learning {
		st.learned++
		if st.learned >= LearningFrames {
			for k := range st.noise {
				st.noise[k] *= noiseScale
			}
			st.learning = false
		}
	}

	for k := 1; k < half; k++ {
		st.spec[FrameSize-k] = complex(real(st.spec[k]), -imag(st.spec[k]))
	}
	st.spec[0] = complex(real(st.spec[0]), 0)
	st.spec[half] = complex(real(st.spec[half]), 0)

	if err := st.plan.Inverse(st.spec, st.spec); err != nil {
		return fmt.Errorf("denoise: inverse fft: %w", err)
	}

	for i := range dst {
		dst[i] = real(st.spec[i]) * r.win[i]
	}

	return nil
}

// Process denoises an interleaved buffer in place. Mode off returns
// immediately. Zero-alloc.
func (r *Reducer) Process(buf []float32, frames, channels int) {
	n := core.Frames(buf, frames, channels)
	if n == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode == ModeOff {
		return
	}

	inv := 1 / r.olaGain

	for ch := 0; ch < channels; ch++ {
		st := r.ch[ch]

		for i := 0; i < n; i++ {
			idx := i*channels + ch
			x := float64(buf[idx])
			buf[idx] = float32(st.out[st.pos])

			st.in[FrameSize-HopSize+st.pos] = x
			st.pos++

			if st.pos < HopSize {
				continue
			}
			st.pos = 0

			// Frames still holding the zero prefix would poison the noise
			// minimum; they, and failed transforms, use the analysis/synthesis
			// identity instead.
			full := st.primed >= FrameSize/HopSize-1
			if !full {
				st.primed++
			}
			if !full || r.processFrame(st, st.in, st.frm) != nil {
				for j, v := range st.in {
					st.frm[j] = v * r.win[j] * r.win[j]
				}
			}

			for j, v := range st.frm {
				st.acc[j] += v * inv
			}

			copy(st.out, st.acc[:HopSize])
			copy(st.acc, st.acc[HopSize:])
			core.Zero(st.acc[FrameSize-HopSize:])
			copy(st.in, st.in[HopSize:])
		}
	}
}
