// Package effectchain is the player's external effects chain: preamp,
// bass/treble tone shelves, reverb and the safety limiter, in that order.
// Stages are built from a registry of runtimes and configured through
// Params, so the gain-staging layer can drive them by type name.
package effectchain

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-hifi/dsp/core"
)

type stage struct {
	params  Params
	runtime Runtime
}

// Chain runs its stages in a fixed order over interleaved buffers.
type Chain struct {
	mu sync.Mutex

	ctx      Context
	registry *Registry
	stages   []*stage
	byType   map[string]*stage
}

// Option configures a Chain.
type Option func(*chainConfig) error

type chainConfig struct {
	registry *Registry
	order    []string
}

// WithRegistry supplies the runtime registry.
func WithRegistry(r *Registry) Option {
	return func(c *chainConfig) error {
		if r == nil {
			return fmt.Errorf("effectchain: nil registry")
		}
		c.registry = r
		return nil
	}
}

// WithOrder sets the stage types and their order.
func WithOrder(types ...string) Option {
	return func(c *chainConfig) error {
		if len(types) == 0 {
			return fmt.Errorf("effectchain: empty stage order")
		}
		c.order = append([]string(nil), types...)
		return nil
	}
}

// New builds a chain at sampleRate. Every stage starts neutral; the
// limiter starts bypassed.
func New(sampleRate float64, opts ...Option) (*Chain, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("effectchain: sample rate must be > 0: %v", sampleRate)
	}

	cfg := chainConfig{order: DefaultOrder}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}

	c := &Chain{
		ctx:      Context{SampleRate: sampleRate},
		registry: cfg.registry,
		byType:   make(map[string]*stage, len(cfg.order)),
	}

	for _, typ := range cfg.order {
		factory := c.registry.Lookup(typ)
		if factory == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStage, typ)
		}
		if _, dup := c.byType[typ]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateStage, typ)
		}

		rt, err := factory(c.ctx)
		if err != nil {
			return nil, err
		}

		st := &stage{params: Params{Type: typ, Bypassed: typ == TypeLimiter}.Clone(), runtime: rt}
		if err := rt.Configure(c.ctx, st.params); err != nil {
			return nil, fmt.Errorf("effectchain: configure %s: %w", typ, err)
		}

		c.stages = append(c.stages, st)
		c.byType[typ] = st
	}

	return c, nil
}

// Configure applies mutate to a copy of the stage's params and reconfigures
// it. The render path sees either the old or the new configuration.
func (c *Chain) Configure(stageType string, mutate func(*Params)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.byType[stageType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStage, stageType)
	}

	next := st.params.Clone()
	mutate(&next)
	next.Type = stageType

	wasBypassed := st.params.Bypassed
	if err := st.runtime.Configure(c.ctx, next); err != nil {
		return fmt.Errorf("effectchain: configure %s: %w", stageType, err)
	}
	st.params = next

	if wasBypassed && !next.Bypassed {
		st.runtime.Reset()
	}

	return nil
}

// Params returns a copy of a stage's params.
func (c *Chain) Params(stageType string) (Params, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.byType[stageType]
	if !ok {
		return Params{}, false
	}
	return st.params.Clone(), true
}

// SetPreamp sets the preamp gain in dB.
func (c *Chain) SetPreamp(db float64) error {
	return c.Configure(TypePreamp, func(p *Params) { p.Num[ParamGainDB] = db })
}

// SetTone sets the bass and treble shelf gains in dB.
func (c *Chain) SetTone(bassDB, trebleDB float64) error {
	return c.Configure(TypeTone, func(p *Params) {
		p.Num[ParamBassDB] = bassDB
		p.Num[ParamTrebleDB] = trebleDB
	})
}

// SetReverbMix sets the reverb wet/dry blend in [0, 1].
func (c *Chain) SetReverbMix(mix float64) error {
	return c.Configure(TypeReverb, func(p *Params) { p.Num[ParamMix] = mix })
}

// SetLimiter enables or bypasses the limiter and sets its ceiling.
func (c *Chain) SetLimiter(enabled bool, thresholdDB float64) error {
	return c.Configure(TypeLimiter, func(p *Params) {
		p.Bypassed = !enabled
		p.Num[ParamThresholdDB] = thresholdDB
	})
}

// SampleRate returns the current rate.
func (c *Chain) SampleRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.SampleRate
}

// UpdateSampleRate reconfigures every stage for a new rate and clears their
// state. Call it from the control path before the first buffer at the new
// rate.
func (c *Chain) UpdateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("effectchain: sample rate must be > 0: %v", sampleRate)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sampleRate == c.ctx.SampleRate {
		return nil
	}

	c.ctx.SampleRate = sampleRate
	for _, st := range c.stages {
		if err := st.runtime.Configure(c.ctx, st.params); err != nil {
			return fmt.Errorf("effectchain: configure %s: %w", st.params.Type, err)
		}
		st.runtime.Reset()
	}

	return nil
}

// Reset clears every stage's processing state.
func (c *Chain) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range c.stages {
		st.runtime.Reset()
	}
}

// Process runs every non-bypassed stage over buf in place. Zero-alloc.
func (c *Chain) Process(buf []float32, frames, channels int) {
	n := core.Frames(buf, frames, channels)
	if n == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range c.stages {
		if !st.params.Bypassed {
			st.runtime.Process(buf, n, channels)
		}
	}
}
