package safety

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/dsp/denoise"
	"github.com/cwbudde/algo-hifi/dsp/hifi"
	"github.com/cwbudde/algo-hifi/internal/logging"
	"github.com/cwbudde/algo-hifi/preset"
)

// Tone control range in dB.
const (
	MinToneDB = -12.0
	MaxToneDB = 12.0
)

// Equalizer is the band filter sink.
type Equalizer interface {
	UpdateGains(gains []float64) bool
	SetEnabled(enabled bool)
}

// Chain is the external effects chain sink.
type Chain interface {
	SetPreamp(db float64) error
	SetTone(bassDB, trebleDB float64) error
	SetReverbMix(mix float64) error
	SetLimiter(enabled bool, thresholdDB float64) error
}

// Enhancer is the HiFi processor sink.
type Enhancer interface {
	SetConfig(cfg hifi.Config)
}

// Denoiser is the noise reducer sink.
type Denoiser interface {
	SetMode(m denoise.Mode)
}

// Snapshotter exposes the latest analysis result.
type Snapshotter interface {
	Result() (analysis.Result, bool)
}

// SmartSwitch toggles the render-side smart-mode check.
type SmartSwitch interface {
	SetSmartMode(enabled bool)
}

// SmartAcknowledger is implemented by a SmartSwitch that wants to know which
// recommended curve was applied.
type SmartAcknowledger interface {
	AcknowledgeSmartCurve(g preset.Gains)
}

// Settings is the persisted user configuration.
type Settings struct {
	Enabled   bool         `json:"enabled"`
	Gains     preset.Gains `json:"gains"`
	PresetID  string       `json:"presetId"`
	BassDB    float64      `json:"bassDb"`
	TrebleDB  float64      `json:"trebleDb"`
	Effects   hifi.Config  `json:"effects"`
	NoiseMode denoise.Mode `json:"noiseMode"`
	Smart     bool         `json:"smart"`
}

// DefaultSettings returns an enabled flat curve with default effects.
func DefaultSettings() Settings {
	return Settings{
		Enabled:  true,
		PresetID: preset.FlatID,
		Effects:  hifi.DefaultConfig(),
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithChain sets the effects chain sink.
func WithChain(c Chain) Option { return func(m *Manager) { m.chain = c } }

// WithEnhancer sets the HiFi processor sink.
func WithEnhancer(e Enhancer) Option { return func(m *Manager) { m.enhancer = e } }

// WithDenoiser sets the noise reducer sink.
func WithDenoiser(d Denoiser) Option { return func(m *Manager) { m.denoiser = d } }

// WithAnalysis sets the source of analysis snapshots.
func WithAnalysis(s Snapshotter) Option { return func(m *Manager) { m.analysis = s } }

// WithSmartSwitch sets the component that runs the smart-mode check.
func WithSmartSwitch(s SmartSwitch) Option { return func(m *Manager) { m.smart = s } }

// WithStore sets the persistence backend.
func WithStore(s Store) Option { return func(m *Manager) { m.store = s } }

// WithPresets sets the preset table used by ApplyNamedPreset.
func WithPresets(t *preset.Table) Option { return func(m *Manager) { m.presets = t } }

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(m *Manager) { m.log = l } }

// Manager serialises configuration changes and keeps the gain staging in
// step with the curve. It is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	eq       Equalizer
	chain    Chain
	enhancer Enhancer
	denoiser Denoiser
	analysis Snapshotter
	smart    SmartSwitch
	store    Store
	presets  *preset.Table
	log      *logging.Logger

	settings Settings
	state    State
}

// New creates a manager around the equalizer sink. The sinks are not
// touched until the first change or Load.
func New(eq Equalizer, opts ...Option) (*Manager, error) {
	if eq == nil {
		return nil, fmt.Errorf("safety: nil equalizer")
	}

	m := &Manager{
		eq:       eq,
		settings: DefaultSettings(),
		state:    Neutral(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.presets == nil {
		m.presets = preset.Default()
	}
	m.log = logging.OrNop(m.log).Named("safety")

	return m, nil
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.settings
}

// State returns the applied gain staging.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// SetBandGain sets one band. Out-of-range indices and non-finite gains are
// ignored; gains are clamped to the preset range.
func (m *Manager) SetBandGain(band int, gainDB float64) {
	if band < 0 || band >= preset.Bands || math.IsNaN(gainDB) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.Gains[band] = clampGain(gainDB)
	m.settings.PresetID = ""
	m.pushGainsLocked()
	m.restageLocked(false)
	m.persistLocked(keyGains, keyPreset)
}

// SetEnabled toggles the equalizer. Disabling also returns the tone
// controls, pre-amp and limiter to neutral.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if enabled == m.settings.Enabled {
		return
	}

	m.settings.Enabled = enabled
	m.eq.SetEnabled(enabled)

	if !enabled {
		m.settings.BassDB, m.settings.TrebleDB = 0, 0
		m.pushToneLocked()
	}

	m.restageLocked(false)
	m.persistLocked(keyEnabled, keyTone)
	m.log.Info("equalizer toggled", zap.Bool("enabled", enabled))
}

// ApplyPreset installs a full curve under the given preset id.
func (m *Manager) ApplyPreset(id string, gains preset.Gains) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.applyPresetLocked(id, gains)
}

// ApplyNamedPreset looks id up in the preset table and applies its curve.
func (m *Manager) ApplyNamedPreset(id string) error {
	p, err := m.presets.Get(id)
	if err != nil {
		return err
	}

	m.ApplyPreset(p.ID, p.Gains)

	return nil
}

func (m *Manager) applyPresetLocked(id string, gains preset.Gains) {
	for i, g := range gains {
		if math.IsNaN(g) {
			g = 0
		}
		m.settings.Gains[i] = clampGain(g)
	}

	m.settings.PresetID = id
	m.pushGainsLocked()
	m.restageLocked(false)
	m.persistLocked(keyGains, keyPreset)
	m.log.Info("preset applied", zap.String("preset", id))
}

// SetToneControls sets the bass and treble shelves of the effects chain.
// Ignored while the equalizer is disabled.
func (m *Manager) SetToneControls(bassDB, trebleDB float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.settings.Enabled {
		return
	}

	m.settings.BassDB = clampTone(bassDB)
	m.settings.TrebleDB = clampTone(trebleDB)
	m.pushToneLocked()
	m.restageLocked(false)
	m.persistLocked(keyTone)
}

// SetEffectConfig installs the HiFi enhancement settings. The reverb mix is
// forwarded to the effects chain.
func (m *Manager) SetEffectConfig(cfg hifi.Config) {
	cfg = cfg.Clamped()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.Effects = cfg
	m.pushEffectsLocked()
	m.persistLocked(keyEffects)
}

// SetNoiseReductionMode selects the noise reducer mode.
func (m *Manager) SetNoiseReductionMode(mode denoise.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.NoiseMode = mode
	if m.denoiser != nil {
		m.denoiser.SetMode(mode)
	}
	m.persistLocked(keyNoise)
}

// SetSmartMode toggles automatic application of recommended curves.
func (m *Manager) SetSmartMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.Smart = enabled
	if m.smart != nil {
		m.smart.SetSmartMode(enabled)
	}
	m.persistLocked(keySmart)
}

// AnalysisResult returns the latest analysis snapshot.
func (m *Manager) AnalysisResult() (analysis.Result, bool) {
	if m.analysis == nil {
		return analysis.Result{}, false
	}

	return m.analysis.Result()
}

// RecommendedEQ returns the curve recommended by the latest analysis.
func (m *Manager) RecommendedEQ() (preset.Gains, bool) {
	r, ok := m.AnalysisResult()
	if !ok {
		return preset.Gains{}, false
	}

	return r.RecommendedEQ, true
}

func (m *Manager) pushGainsLocked() {
	g := m.settings.Gains
	m.eq.UpdateGains(g[:])
}

func (m *Manager) pushToneLocked() {
	if m.chain == nil {
		return
	}

	if err := m.chain.SetTone(m.settings.BassDB, m.settings.TrebleDB); err != nil {
		m.log.Warn("tone rejected", zap.Error(err))
	}
}

func (m *Manager) pushEffectsLocked() {
	if m.enhancer != nil {
		m.enhancer.SetConfig(m.settings.Effects)
	}

	if m.chain != nil {
		if err := m.chain.SetReverbMix(m.settings.Effects.ReverbMix); err != nil {
			m.log.Warn("reverb mix rejected", zap.Error(err))
		}
	}
}

// restageLocked recomputes gain staging and pushes what changed, or
// everything when force is set.
func (m *Manager) restageLocked(force bool) {
	next := Neutral()
	if m.settings.Enabled {
		next = Compute(m.settings.Gains, m.settings.BassDB, m.settings.TrebleDB)
	}

	if !force && math.Abs(next.PreampDB-m.state.PreampDB) <= preampHysteresisDB {
		next.PreampDB = m.state.PreampDB
	}

	// Disabled is an exact reset rather than a hysteresis step.
	if !m.settings.Enabled {
		next.PreampDB = 0
	}

	prev := m.state
	m.state = next

	if m.chain != nil {
		if force || next.PreampDB != prev.PreampDB {
			if err := m.chain.SetPreamp(next.PreampDB); err != nil {
				m.log.Warn("preamp rejected", zap.Error(err))
			}
		}

		if force || next.LimiterEnabled != prev.LimiterEnabled || next.LimiterThresholdDB != prev.LimiterThresholdDB {
			if err := m.chain.SetLimiter(next.LimiterEnabled, next.LimiterThresholdDB); err != nil {
				m.log.Warn("limiter rejected", zap.Error(err))
			}
		}
	}

	if next != prev {
		m.log.Debug("gain staging",
			zap.Float64("peak_db", next.PeakGainDB),
			zap.Float64("preamp_db", next.PreampDB),
			zap.Bool("limiter", next.LimiterEnabled))
	}
	m.persistLocked(keyState)
}

func clampGain(g float64) float64 {
	return math.Min(math.Max(g, preset.MinGainDB), preset.MaxGainDB)
}

func clampTone(g float64) float64 {
	if math.IsNaN(g) {
		return 0
	}

	return math.Min(math.Max(g, MinToneDB), MaxToneDB)
}
