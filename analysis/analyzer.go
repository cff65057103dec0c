package analysis

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-hifi/dsp/core"
	"github.com/cwbudde/algo-hifi/dsp/spectrum"
	"github.com/cwbudde/algo-hifi/dsp/window"
	"github.com/cwbudde/algo-hifi/preset"
	"github.com/cwbudde/algo-hifi/stats/frequency"
)

var errInvalidRate = errors.New("analysis: sample rate must be > 0")

const (
	noiseKeep = 0.999
	noiseRise = 0.001
)

// Analyzer accumulates mono-mixed samples into fixed windows and publishes
// a new Result each time a window fills.
type Analyzer struct {
	mu sync.Mutex

	cfg     config
	tr      *spectrum.Transformer
	edges   [NumBands][2]float64
	buf     []float64
	fill    int
	windows int

	bandHist [][NumBands]float64
	rmsHist  []float64
	head     int
	count    int

	noise      [NumBands]float64
	noiseReady bool

	result     Result
	haveResult bool
}

// New creates an analyzer.
func New(opts ...Option) (*Analyzer, error) {
	cfg := config{
		fftSize:    DefaultFFTSize,
		history:    DefaultHistory,
		sampleRate: defaultSampleRate,
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.presets == nil {
		cfg.presets = preset.Default()
	}

	tr, err := spectrum.NewTransformer(cfg.fftSize, window.TypeHann)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	a := &Analyzer{
		cfg:      cfg,
		tr:       tr,
		buf:      make([]float64, cfg.fftSize),
		bandHist: make([][NumBands]float64, cfg.history),
		rmsHist:  make([]float64, cfg.history),
	}
	a.computeEdges()

	return a, nil
}

// FFTSize returns the window length.
func (a *Analyzer) FFTSize() int { return a.cfg.fftSize }

// SampleRate returns the current sample rate.
func (a *Analyzer) SampleRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.sampleRate
}

// UpdateSampleRate changes the band mapping. A change resets all state.
func (a *Analyzer) UpdateSampleRate(hz float64) error {
	if hz <= 0 || !core.IsFinite(hz) {
		return fmt.Errorf("%w: %v", errInvalidRate, hz)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if hz == a.cfg.sampleRate {
		return nil
	}

	a.cfg.sampleRate = hz
	a.computeEdges()
	a.resetLocked()

	return nil
}

// Reset clears the history, noise tracker and published result. Call it on
// track change.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *Analyzer) resetLocked() {
	a.fill = 0
	a.windows = 0
	a.head = 0
	a.count = 0
	a.noiseReady = false
	a.noise = [NumBands]float64{}
	a.result = Result{}
	a.haveResult = false
}

// Result returns the latest snapshot and whether one exists yet.
func (a *Analyzer) Result() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, a.haveResult
}

// Windows returns how many windows have been analysed since the last reset.
func (a *Analyzer) Windows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.windows
}

// Process feeds an interleaved buffer. The buffer is not modified.
// Zero-alloc.
func (a *Analyzer) Process(buf []float32, frames, channels int) {
	n := core.Frames(buf, frames, channels)
	if n == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < n; i++ {
		a.buf[a.fill] = core.MonoSample(buf, i, channels)
		a.fill++

		if a.fill == len(a.buf) {
			a.analyze()
			a.fill = 0
		}
	}
}

func (a *Analyzer) computeEdges() {
	nyquist := a.cfg.sampleRate / 2
	for i, fc := range BandCenters {
		a.edges[i] = [2]float64{fc / math.Sqrt2, math.Min(fc*math.Sqrt2, nyquist)}
	}
}

func (a *Analyzer) analyze() {
	sumSq := 0.0
	for _, x := range a.buf {
		sumSq += x * x
	}
	rmsDB := core.LinearPowerToDB(sumSq / float64(len(a.buf)))

	mag, err := a.tr.Magnitude(a.buf)
	if err != nil {
		return
	}

	binHz := a.tr.BinHz(a.cfg.sampleRate)

	var bands [NumBands]float64
	for i, e := range a.edges {
		bands[i] = core.LinearPowerToDB(frequency.BandEnergy(mag, binHz, e[0], e[1]))
	}

	a.trackNoise(bands)

	a.bandHist[a.head] = bands
	a.rmsHist[a.head] = rmsDB
	a.head = (a.head + 1) % len(a.bandHist)
	a.count = min(a.count+1, len(a.bandHist))
	a.windows++

	a.publish(frequency.Centroid(mag, binHz))
}

func (a *Analyzer) trackNoise(bands [NumBands]float64) {
	if !a.noiseReady {
		a.noise = bands
		a.noiseReady = true
		return
	}

	for i, v := range bands {
		if v < a.noise[i] {
			a.noise[i] = v
		} else {
			a.noise[i] = a.noise[i]*noiseKeep + v*noiseRise
		}
	}
}

func (a *Analyzer) publish(centroid float64) {
	var mean [NumBands]float64
	minWin, maxWin := math.Inf(1), math.Inf(-1)
	loudness := 0.0

	for k := 0; k < a.count; k++ {
		w := a.bandHist[k]
		for i, v := range w {
			mean[i] += v
		}

		m := core.Mean(w[:])
		minWin = math.Min(minWin, m)
		maxWin = math.Max(maxWin, m)
		loudness += a.rmsHist[k]
	}

	inv := 1 / float64(a.count)
	for i := range mean {
		mean[i] *= inv
	}

	dynamicRange := maxWin - minWin
	f := Derive(mean, dynamicRange)
	genre := Classify(f)
	noiseFloor := core.Mean(a.noise[:])

	a.result = Result{
		SpectrumEnergy:   mean,
		Genre:            genre,
		RecommendedEQ:    Recommend(a.cfg.presets, genre, mean),
		DynamicRange:     dynamicRange,
		AverageLoudness:  loudness * inv,
		NoiseFloor:       noiseFloor,
		NeedsDenoising:   noiseFloor > DenoiseThresholdDB,
		BassRatio:        f.BassRatio,
		TrebleRatio:      f.TrebleRatio,
		VocalPresence:    f.VocalPresence,
		SpectralCentroid: centroid,
		Mode:             ModeRealtime,
	}
	a.haveResult = true
}
