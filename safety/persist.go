package safety

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/dsp/denoise"
	"github.com/cwbudde/algo-hifi/dsp/hifi"
	"github.com/cwbudde/algo-hifi/preset"
	"github.com/cwbudde/algo-hifi/store"
)

// Store is an opaque key-value backend. Get returns an error wrapping
// store.ErrNotFound for a missing key.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Persisted keys.
const (
	keyEnabled = "eq.enabled"
	keyGains   = "eq.gains"
	keyPreset  = "eq.preset"
	keyTone    = "eq.tone"
	keyEffects = "effects.config"
	keyNoise   = "denoise.mode"
	keySmart   = "smart.enabled"
	keyState   = "safety.state"
)

type toneDoc struct {
	BassDB   float64 `json:"bassDb"`
	TrebleDB float64 `json:"trebleDb"`
}

func (m *Manager) encodeLocked(key string) (any, bool) {
	s := &m.settings

	switch key {
	case keyEnabled:
		return s.Enabled, true
	case keyGains:
		return s.Gains[:], true
	case keyPreset:
		p, err := m.presets.Get(s.PresetID)
		if err != nil {
			p = preset.Preset{ID: s.PresetID, Name: s.PresetID, Category: "custom"}
		}
		p.Gains = s.Gains

		return p, true
	case keyTone:
		return toneDoc{BassDB: s.BassDB, TrebleDB: s.TrebleDB}, true
	case keyEffects:
		return s.Effects, true
	case keyNoise:
		return s.NoiseMode, true
	case keySmart:
		return s.Smart, true
	case keyState:
		return m.state, true
	}

	return nil, false
}

// persistLocked writes the named keys. Failures are logged; the in-memory
// settings stay authoritative.
func (m *Manager) persistLocked(keys ...string) {
	if m.store == nil {
		return
	}

	for _, key := range keys {
		v, ok := m.encodeLocked(key)
		if !ok {
			continue
		}

		data, err := json.Marshal(v)
		if err == nil {
			err = m.store.Set(key, data)
		}

		if err != nil {
			m.log.Warn("persist failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Load reads the persisted settings, applies them to every sink and
// recomputes the gain staging. Missing keys keep their defaults. Corrupt
// values are skipped and reported together in the returned error.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := DefaultSettings()
	var errs error

	if m.store != nil {
		read := func(key string, dst any) {
			data, err := m.store.Get(key)
			if errors.Is(err, store.ErrNotFound) {
				return
			}
			if err == nil {
				err = json.Unmarshal(data, dst)
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("safety: load %s: %w", key, err))
			}
		}

		read(keyEnabled, &s.Enabled)

		var gains []float64
		read(keyGains, &gains)
		haveGains := false
		switch {
		case gains == nil:
		case len(gains) != preset.Bands:
			errs = multierr.Append(errs, fmt.Errorf("safety: load %s: %d gains, want %d", keyGains, len(gains), preset.Bands))
		default:
			for i, g := range gains {
				s.Gains[i] = clampGain(g)
			}
			haveGains = true
		}

		var p preset.Preset
		read(keyPreset, &p)
		s.PresetID = p.ID
		switch {
		case haveGains:
		case p.ID != "":
			// No usable curve stored; fall back to the preset's own.
			for i, g := range p.Gains {
				if math.IsNaN(g) {
					g = 0
				}
				s.Gains[i] = clampGain(g)
			}
		case gains == nil:
			s.PresetID = preset.FlatID
		}

		var tone toneDoc
		read(keyTone, &tone)
		s.BassDB, s.TrebleDB = clampTone(tone.BassDB), clampTone(tone.TrebleDB)

		effects := hifi.DefaultConfig()
		read(keyEffects, &effects)
		s.Effects = effects.Clamped()

		mode := denoise.ModeOff
		read(keyNoise, &mode)
		s.NoiseMode = mode

		read(keySmart, &s.Smart)
	}

	if !s.Enabled {
		s.BassDB, s.TrebleDB = 0, 0
	}

	m.settings = s
	m.applyAllLocked()

	if errs != nil {
		m.log.Warn("settings partially restored", zap.Error(errs))
	} else {
		m.log.Info("settings restored", zap.String("preset", s.PresetID), zap.Bool("enabled", s.Enabled))
	}

	return errs
}

// applyAllLocked pushes every setting to every sink, gain staging
// included.
func (m *Manager) applyAllLocked() {
	s := m.settings

	m.eq.SetEnabled(s.Enabled)
	m.pushGainsLocked()
	m.pushToneLocked()
	m.pushEffectsLocked()

	if m.denoiser != nil {
		m.denoiser.SetMode(s.NoiseMode)
	}
	if m.smart != nil {
		m.smart.SetSmartMode(s.Smart)
	}

	m.restageLocked(true)
}
