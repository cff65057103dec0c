package pipeline

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/denoise"
	"github.com/cwbudde/algo-hifi/dsp/effectchain"
	"github.com/cwbudde/algo-hifi/dsp/filter/bank"
	"github.com/cwbudde/algo-hifi/dsp/hifi"
	"github.com/cwbudde/algo-hifi/internal/logging"
	"github.com/cwbudde/algo-hifi/preset"
)

const (
	// DefaultSmartInterval is the rendered-audio time between two
	// smart-mode checks.
	DefaultSmartInterval = 2 * time.Second

	// smartThresholdDB is the smallest band difference worth rescheduling.
	smartThresholdDB = 1.0

	defaultSampleRate = 44100.0
)

// Processor processes interleaved float32 audio in place.
type Processor interface {
	Process(buf []float32, frames, channels int)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAnalyzer sets the spectral analyzer.
func WithAnalyzer(a *analysis.Analyzer) Option { return func(o *Orchestrator) { o.analyzer = a } }

// WithDenoiser sets the noise reducer.
func WithDenoiser(d *denoise.Reducer) Option { return func(o *Orchestrator) { o.denoiser = d } }

// WithBank sets the filter bank.
func WithBank(b *bank.Bank) Option { return func(o *Orchestrator) { o.bank = b } }

// WithHiFi sets the HiFi processor.
func WithHiFi(p *hifi.Processor) Option { return func(o *Orchestrator) { o.hifi = p } }

// WithChain appends an external effects chain after the HiFi processor.
func WithChain(c *effectchain.Chain) Option { return func(o *Orchestrator) { o.chain = c } }

// WithSmartInterval sets the rendered-audio time between smart-mode checks.
func WithSmartInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.smartInterval = d
		}
	}
}

// WithLogger sets the control-path logger.
func WithLogger(l *logging.Logger) Option { return func(o *Orchestrator) { o.log = l } }

// Orchestrator owns one instance of every render component.
type Orchestrator struct {
	analyzer *analysis.Analyzer
	denoiser *denoise.Reducer
	bank     *bank.Bank
	hifi     *hifi.Processor
	chain    *effectchain.Chain
	log      *logging.Logger

	smartInterval time.Duration
	updates       chan analysis.Result

	mu          sync.Mutex
	smart       bool
	sampleRate  float64
	untilCheck  int
	lastCurve   preset.Gains
	haveCurve   bool
	checkFrames int
}

// New builds an orchestrator. Components not supplied by options are
// created with their defaults at 44.1 kHz stereo.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		smartInterval: DefaultSmartInterval,
		updates:       make(chan analysis.Result, 1),
		sampleRate:    defaultSampleRate,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = logging.OrNop(o.log).Named("pipeline")

	var err error
	if o.analyzer == nil {
		if o.analyzer, err = analysis.New(analysis.WithSampleRate(o.sampleRate)); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if o.denoiser == nil {
		if o.denoiser, err = denoise.New(); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if o.bank == nil {
		if o.bank, err = bank.Standard10(o.sampleRate); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if o.hifi == nil {
		if o.hifi, err = hifi.New(core.WithSampleRate(o.sampleRate)); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	o.sampleRate = o.bank.SampleRate()
	o.checkFrames = intervalFrames(o.smartInterval, o.sampleRate)
	o.untilCheck = o.checkFrames

	return o, nil
}

// Analyzer returns the spectral analyzer.
func (o *Orchestrator) Analyzer() *analysis.Analyzer { return o.analyzer }

// Denoiser returns the noise reducer.
func (o *Orchestrator) Denoiser() *denoise.Reducer { return o.denoiser }

// Bank returns the filter bank.
func (o *Orchestrator) Bank() *bank.Bank { return o.bank }

// HiFi returns the HiFi processor.
func (o *Orchestrator) HiFi() *hifi.Processor { return o.hifi }

// Chain returns the external effects chain, or nil.
func (o *Orchestrator) Chain() *effectchain.Chain { return o.chain }

// SmartUpdates delivers recommended curves scheduled by the smart-mode
// check. At most one update is pending; later ones are dropped until it is
// received. A curve is resent on every check until AcknowledgeSmartCurve
// reports it applied.
func (o *Orchestrator) SmartUpdates() <-chan analysis.Result { return o.updates }

// SetSmartMode toggles the smart-mode check. Enabling restarts the clock.
func (o *Orchestrator) SetSmartMode(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if enabled && !o.smart {
		o.untilCheck = o.checkFrames
		o.haveCurve = false
	}
	o.smart = enabled
}

// SmartMode reports whether the smart-mode check runs.
func (o *Orchestrator) SmartMode() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.smart
}

// Attach prepares every component for a stream and returns the render
// processor. A sample rate change reallocates, so call it from the control
// path before the first buffer of the stream.
func (o *Orchestrator) Attach(sampleRate float64, channels int) (Processor, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("pipeline: sample rate must be > 0: %v", sampleRate)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("pipeline: unsupported channel count %d", channels)
	}

	if err := o.analyzer.UpdateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	o.bank.UpdateSampleRate(sampleRate)
	if err := o.hifi.UpdateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if o.chain != nil {
		if err := o.chain.UpdateSampleRate(sampleRate); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	o.Reset()

	o.mu.Lock()
	o.sampleRate = sampleRate
	o.checkFrames = intervalFrames(o.smartInterval, sampleRate)
	o.untilCheck = o.checkFrames
	o.mu.Unlock()

	o.log.Info("stream attached", zap.Float64("sample_rate", sampleRate), zap.Int("channels", channels))

	return o, nil
}

// Reset clears the processing state of every component, as on a track
// change. Settings are kept.
func (o *Orchestrator) Reset() {
	o.analyzer.Reset()
	o.denoiser.Reset()
	o.bank.Reset()
	o.hifi.Reset()
	if o.chain != nil {
		o.chain.Reset()
	}
}

// Process runs one buffer through the pipeline.
func (o *Orchestrator) Process(buf []float32, frames, channels int) {
	n := core.Frames(buf, frames, channels)
	if n == 0 {
		return
	}

	o.analyzer.Process(buf, n, channels)
	o.smartCheck(n)

	if o.denoiser.Enabled() {
		o.denoiser.Process(buf, n, channels)
	}
	o.bank.ProcessBuffer(buf, n, channels)
	o.hifi.Process(buf, n, channels)
	if o.chain != nil {
		o.chain.Process(buf, n, channels)
	}
}

func (o *Orchestrator) smartCheck(frames int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.smart {
		return
	}

	o.untilCheck -= frames
	if o.untilCheck > 0 {
		return
	}
	o.untilCheck = o.checkFrames

	r, ok := o.analyzer.Result()
	if !ok || r.Genre == analysis.GenreUnknown {
		return
	}
	if o.haveCurve && !differs(r.RecommendedEQ, o.lastCurve, smartThresholdDB) {
		return
	}

	select {
	case o.updates <- r:
	default:
	}
}

// AcknowledgeSmartCurve records the curve the control path applied. Later
// checks send only recommendations that differ from it.
func (o *Orchestrator) AcknowledgeSmartCurve(g preset.Gains) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastCurve = g
	o.haveCurve = true
}

func differs(a, b preset.Gains, thresholdDB float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > thresholdDB {
			return true
		}
	}

	return false
}

func intervalFrames(d time.Duration, sampleRate float64) int {
	return max(1, int(math.Round(d.Seconds()*sampleRate)))
}
