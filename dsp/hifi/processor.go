package hifi

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/effects/dynamics"
	"github.com/cwbudde/algo-hifi/dsp/effects/spatial"
	"github.com/cwbudde/algo-hifi/dsp/filter/biquad"
	"github.com/cwbudde/algo-hifi/dsp/filter/design"
)

const (
	bassShelfFreq = 100.0
	bassShelfQ    = 0.707
)

// Processor runs the enhancement stages over interleaved float32 buffers.
// It is safe for one render goroutine and any number of control goroutines.
type Processor struct {
	mu sync.Mutex

	cfg        Config
	enabled    bool
	sampleRate float64

	widener   *spatial.Widener
	crossfeed *spatial.Crossfeed
	bass      biquad.Coefficients
	bassState [2]biquad.State
	comp      *dynamics.Compressor
	norm      *dynamics.Normalizer
}

// New creates an enabled processor with DefaultConfig.
func New(opts ...core.ProcessorOption) (*Processor, error) {
	pc := core.ApplyProcessorOptions(opts...)
	cfg := DefaultConfig()

	widener, err := spatial.NewWidener(cfg.SpatialWidth)
	if err != nil {
		return nil, fmt.Errorf("hifi: %w", err)
	}

	crossfeed, err := spatial.NewCrossfeed(pc.SampleRate, cfg.CrossfeedLevel, cfg.CrossfeedDelayMs)
	if err != nil {
		return nil, fmt.Errorf("hifi: %w", err)
	}

	comp, err := dynamics.NewCompressor()
	if err != nil {
		return nil, fmt.Errorf("hifi: %w", err)
	}

	p := &Processor{
		cfg:        cfg,
		enabled:    true,
		sampleRate: pc.SampleRate,
		widener:    widener,
		crossfeed:  crossfeed,
		comp:       comp,
		norm:       dynamics.NewNormalizer(),
	}
	p.bass = design.LowShelf(bassShelfFreq, cfg.BassGainDB, bassShelfQ, pc.SampleRate)

	return p, nil
}

// Config returns the active configuration snapshot.
func (p *Processor) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cfg
}

// SetConfig installs a new configuration. Out-of-range fields are clamped.
// A changed crossfeed delay reallocates the delay lines before the lock is
// taken, so the render path only ever sees a swap.
func (p *Processor) SetConfig(cfg Config) {
	cfg = cfg.Clamped()

	p.mu.Lock()
	rate := p.sampleRate
	delayChanged := cfg.CrossfeedDelayMs != p.cfg.CrossfeedDelayMs
	p.mu.Unlock()

	var cf *spatial.Crossfeed
	if delayChanged {
		// Inputs are clamped, construction cannot fail.
		cf, _ = spatial.NewCrossfeed(rate, cfg.CrossfeedLevel, cfg.CrossfeedDelayMs)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cf != nil && rate == p.sampleRate {
		p.crossfeed = cf
	}
	if p.crossfeed.DelayMs() != cfg.CrossfeedDelayMs {
		// The rate changed while the line was built.
		_ = p.crossfeed.SetDelay(cfg.CrossfeedDelayMs)
	}

	_ = p.widener.SetAmount(cfg.SpatialWidth)
	_ = p.crossfeed.SetLevel(cfg.CrossfeedLevel)

	if cfg.BassGainDB != p.cfg.BassGainDB {
		p.bass = design.LowShelf(bassShelfFreq, cfg.BassGainDB, bassShelfQ, p.sampleRate)
	}

	if !cfg.DynamicRangeEnabled && p.cfg.DynamicRangeEnabled {
		p.comp.Reset()
	}

	if !cfg.LoudnessNormEnabled && p.cfg.LoudnessNormEnabled {
		p.norm.Reset()
	}

	p.cfg = cfg
}

// SetEnabled toggles the processor. A disabled processor leaves buffers
// untouched; enabling resets all stage state.
func (p *Processor) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if enabled && !p.enabled {
		p.resetLocked()
	}

	p.enabled = enabled
}

// Enabled reports whether the processor runs.
func (p *Processor) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.enabled
}

// SampleRate returns the processing rate.
func (p *Processor) SampleRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.sampleRate
}

// UpdateSampleRate rebuilds the bass shelf and crossfeed delay lines for a
// new rate and clears every stage. It allocates; call it from the control
// path before the first buffer at the new rate.
func (p *Processor) UpdateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("hifi: sample rate must be positive and finite: %f", sampleRate)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if sampleRate == p.sampleRate {
		return nil
	}

	if err := p.crossfeed.SetSampleRate(sampleRate); err != nil {
		return fmt.Errorf("hifi: %w", err)
	}

	p.sampleRate = sampleRate
	p.bass = design.LowShelf(bassShelfFreq, p.cfg.BassGainDB, bassShelfQ, sampleRate)
	p.resetLocked()

	return nil
}

// Reset clears all stage state without changing the configuration.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetLocked()
}

// Process runs the stage chain over an interleaved mono or stereo buffer in
// place. Zero-alloc.
func (p *Processor) Process(buf []float32, frames, channels int) {
	frames = core.Frames(buf, frames, channels)
	if frames == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}

	cfg := p.cfg
	blend := cfg.BassGainDB / MaxBassGainDB

	if channels == 1 {
		for i := 0; i < frames; i++ {
			x := float64(buf[i])
			if blend > 0 {
				x += blend * (p.bass.Process(x, &p.bassState[0]) - x)
			}
			if cfg.DynamicRangeEnabled {
				x = p.comp.ProcessSample(x)
			}
			if cfg.LoudnessNormEnabled {
				x = p.norm.ProcessSample(x)
			}
			buf[i] = float32(core.SoftClip(x))
		}

		return
	}

	for i := 0; i < frames; i++ {
		l, r := float64(buf[2*i]), float64(buf[2*i+1])

		if cfg.SpatialWidth > 0 {
			l, r = p.widener.ProcessStereo(l, r)
		}
		if cfg.CrossfeedLevel > 0 {
			l, r = p.crossfeed.ProcessStereo(l, r)
		}
		if blend > 0 {
			l += blend * (p.bass.Process(l, &p.bassState[0]) - l)
			r += blend * (p.bass.Process(r, &p.bassState[1]) - r)
		}
		if cfg.DynamicRangeEnabled {
			l, r = p.comp.ProcessStereo(l, r)
		}
		if cfg.LoudnessNormEnabled {
			l, r = p.norm.ProcessStereo(l, r)
		}

		buf[2*i] = float32(core.SoftClip(l))
		buf[2*i+1] = float32(core.SoftClip(r))
	}
}

func (p *Processor) resetLocked() {
	p.crossfeed.Reset()
	p.bassState[0].Reset()
	p.bassState[1].Reset()
	p.comp.Reset()
	p.norm.Reset()
}
