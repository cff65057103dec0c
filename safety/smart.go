package safety

import (
	"context"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-hifi/analysis"
	"github.com/cwbudde/algo-hifi/dsp/denoise"
)

// SmartPresetPrefix prefixes the preset id of automatically applied curves.
const SmartPresetPrefix = "smart:"

// RunSmartMode applies recommended curves scheduled by the render path until
// ctx is done or updates is closed. Updates arriving while smart mode or the
// equalizer is off are dropped.
func (m *Manager) RunSmartMode(ctx context.Context, updates <-chan analysis.Result) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-updates:
			if !ok {
				return nil
			}

			m.applyRecommendation(r)
		}
	}
}

func (m *Manager) applyRecommendation(r analysis.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.settings.Smart || !m.settings.Enabled || r.Genre == analysis.GenreUnknown {
		return
	}

	m.applyPresetLocked(SmartPresetPrefix+r.Genre.String(), r.RecommendedEQ)
	if ack, ok := m.smart.(SmartAcknowledger); ok {
		ack.AcknowledgeSmartCurve(m.settings.Gains)
	}

	if r.NeedsDenoising && m.settings.NoiseMode == denoise.ModeOff {
		m.log.Info("noise floor high, noise reduction is off",
			zap.Float64("noise_floor_db", r.NoiseFloor))
	}
}
