package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/effects/dynamics"
	"github.com/cwbudde/algo-hifi/dsp/effects/reverb"
	"github.com/cwbudde/algo-hifi/dsp/filter/biquad"
	"github.com/cwbudde/algo-hifi/dsp/filter/design"
)

const (
	minPreampDB = -24.0
	maxPreampDB = 12.0

	maxToneDB       = 12.0
	bassShelfHz     = 100.0
	trebleShelfHz   = 10000.0
	defaultRoomSize = 0.5
	defaultDamp     = 0.5
)

// preampRuntime applies a static gain.
type preampRuntime struct {
	gainDB float64
	gain   float64
}

func newPreamp(Context) (Runtime, error) { return &preampRuntime{gain: 1}, nil }

func (r *preampRuntime) Configure(_ Context, p Params) error {
	r.gainDB = core.Clamp(p.GetNum(ParamGainDB, 0), minPreampDB, maxPreampDB)
	r.gain = core.DBToLinear(r.gainDB)
	return nil
}

func (r *preampRuntime) Process(buf []float32, frames, channels int) {
	if r.gainDB == 0 {
		return
	}
	g := float32(r.gain)
	for i := range buf[:frames*channels] {
		buf[i] *= g
	}
}

func (r *preampRuntime) Reset() {}

// toneRuntime is a bass/treble shelf pair.
type toneRuntime struct {
	bassDB, trebleDB float64
	bass, treble     biquad.Coefficients
	bassSt, trebleSt [2]biquad.State
}

func newTone(Context) (Runtime, error) {
	return &toneRuntime{bass: biquad.Identity(), treble: biquad.Identity()}, nil
}

func (r *toneRuntime) Configure(ctx Context, p Params) error {
	bass := core.Clamp(p.GetNum(ParamBassDB, 0), -maxToneDB, maxToneDB)
	treble := core.Clamp(p.GetNum(ParamTrebleDB, 0), -maxToneDB, maxToneDB)

	r.bassDB, r.trebleDB = bass, treble
	r.bass = design.LowShelf(bassShelfHz, bass, design.DefaultQ, ctx.SampleRate)
	r.treble = design.HighShelf(trebleShelfHz, treble, design.DefaultQ, ctx.SampleRate)

	return nil
}

func (r *toneRuntime) Process(buf []float32, frames, channels int) {
	for ch := 0; ch < channels; ch++ {
		if r.bassDB != 0 {
			r.bass.ProcessInterleaved(buf, frames, channels, ch, &r.bassSt[ch])
		}
		if r.trebleDB != 0 {
			r.treble.ProcessInterleaved(buf, frames, channels, ch, &r.trebleSt[ch])
		}
	}
}

func (r *toneRuntime) Reset() {
	for i := range r.bassSt {
		r.bassSt[i].Reset()
		r.trebleSt[i].Reset()
	}
}

// reverbRuntime wraps the stereo Freeverb.
type reverbRuntime struct {
	fx         *reverb.Reverb
	sampleRate float64
}

func newReverb(ctx Context) (Runtime, error) {
	fx, err := reverb.New(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: create reverb: %w", err)
	}
	return &reverbRuntime{fx: fx, sampleRate: ctx.SampleRate}, nil
}

func (r *reverbRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.sampleRate {
		if err := r.fx.SetSampleRate(ctx.SampleRate); err != nil {
			return fmt.Errorf("effectchain: reverb: %w", err)
		}
		r.sampleRate = ctx.SampleRate
	}

	if err := r.fx.SetMix(core.Clamp(p.GetNum(ParamMix, 0), 0, 1)); err != nil {
		return err
	}
	if err := r.fx.SetRoomSize(core.Clamp(p.GetNum(ParamRoomSize, defaultRoomSize), 0, 1)); err != nil {
		return err
	}
	return r.fx.SetDamp(core.Clamp(p.GetNum(ParamDamp, defaultDamp), 0, 1))
}

func (r *reverbRuntime) Process(buf []float32, frames, channels int) {
	if r.fx.Mix() == 0 {
		return
	}

	if channels == 1 {
		for i := 0; i < frames; i++ {
			buf[i] = float32(r.fx.ProcessSample(float64(buf[i])))
		}
		return
	}

	for i := 0; i < frames; i++ {
		l, rr := r.fx.ProcessStereo(float64(buf[2*i]), float64(buf[2*i+1]))
		buf[2*i], buf[2*i+1] = float32(l), float32(rr)
	}
}

func (r *reverbRuntime) Reset() { r.fx.Reset() }

// limiterRuntime is the output safety limiter.
type limiterRuntime struct {
	lim *dynamics.Limiter
}

func newLimiter(ctx Context) (Runtime, error) {
	lim, err := dynamics.NewLimiter(ctx.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("effectchain: create limiter: %w", err)
	}
	return &limiterRuntime{lim: lim}, nil
}

func (r *limiterRuntime) Configure(ctx Context, p Params) error {
	if err := r.lim.SetSampleRate(ctx.SampleRate); err != nil {
		return fmt.Errorf("effectchain: limiter: %w", err)
	}
	return r.lim.SetThreshold(core.Clamp(p.GetNum(ParamThresholdDB, r.lim.Threshold()), -24, 0))
}

func (r *limiterRuntime) Process(buf []float32, frames, channels int) {
	if channels == 1 {
		for i := 0; i < frames; i++ {
			buf[i] = float32(r.lim.ProcessSample(float64(buf[i])))
		}
		return
	}

	for i := 0; i < frames; i++ {
		l, rr := r.lim.ProcessStereo(float64(buf[2*i]), float64(buf[2*i+1]))
		buf[2*i], buf[2*i+1] = float32(l), float32(rr)
	}
}

func (r *limiterRuntime) Reset() { r.lim.Reset() }
