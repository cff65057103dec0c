package bank

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-hifi/dsp/core"
)

// StandardFrequencies are the ten ISO octave centres of the player EQ.
var StandardFrequencies = [10]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

var (
	errNoBands          = errors.New("bank: at least one band is required")
	errMismatchedLength = errors.New("bank: frequency and gain counts differ")
	errInvalidRate      = errors.New("bank: sample rate must be positive and finite")
)

type bankConfig struct {
	q          float64
	shelfEdges bool
}

// Option configures a Bank.
type Option func(*bankConfig)

// WithQ sets the Q shared by every band. Non-positive values are ignored.
func WithQ(q float64) Option {
	return func(cfg *bankConfig) {
		if q > 0 && core.IsFinite(q) {
			cfg.q = q
		}
	}
}

// WithShelfEdges makes the lowest band a low shelf and the highest band a
// high shelf. Inner bands stay peaking.
func WithShelfEdges() Option {
	return func(cfg *bankConfig) {
		cfg.shelfEdges = true
	}
}

// Bank cascades one Filter per EQ band. It is safe for one render goroutine
// and any number of control goroutines.
type Bank struct {
	mu         sync.Mutex
	filters    []*Filter
	sampleRate float64
	enabled    bool
}

// New builds a bank from parallel frequency and gain slices. The bank starts
// enabled.
func New(freqs, gains []float64, sampleRate float64, opts ...Option) (*Bank, error) {
	if len(freqs) == 0 {
		return nil, errNoBands
	}

	if len(freqs) != len(gains) {
		return nil, fmt.Errorf("%w: %d frequencies, %d gains", errMismatchedLength, len(freqs), len(gains))
	}

	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("%w: %v", errInvalidRate, sampleRate)
	}

	cfg := bankConfig{q: DefaultQ}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := &Bank{
		filters:    make([]*Filter, len(freqs)),
		sampleRate: sampleRate,
		enabled:    true,
	}

	last := len(freqs) - 1
	for i, freq := range freqs {
		typ := Peaking
		if cfg.shelfEdges && last > 0 {
			switch i {
			case 0:
				typ = LowShelf
			case last:
				typ = HighShelf
			}
		}

		b.filters[i] = NewFilter(Band{
			Frequency:  freq,
			Gain:       gains[i],
			Q:          cfg.q,
			Type:       typ,
			SampleRate: sampleRate,
		})
	}

	return b, nil
}

// Standard10 returns a flat ten-band bank on [StandardFrequencies] with
// shelving edge bands.
func Standard10(sampleRate float64) (*Bank, error) {
	var gains [len(StandardFrequencies)]float64
	return New(StandardFrequencies[:], gains[:], sampleRate, WithShelfEdges())
}

// Len returns the number of bands.
func (b *Bank) Len() int {
	return len(b.filters)
}

// UpdateGains replaces every band gain. A slice whose length differs from
// the band count is rejected and the bank is left unchanged.
func (b *Bank) UpdateGains(gains []float64) bool {
	if len(gains) != len(b.filters) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, f := range b.filters {
		f.SetGain(gains[i])
	}

	return true
}

// SetGain sets the gain of band i. An out-of-range index is ignored.
func (b *Bank) SetGain(i int, gainDB float64) {
	if i < 0 || i >= len(b.filters) {
		return
	}

	b.mu.Lock()
	b.filters[i].SetGain(gainDB)
	b.mu.Unlock()
}

// Gains returns the clamped gain of every band.
func (b *Bank) Gains() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]float64, len(b.filters))
	for i, f := range b.filters {
		out[i] = f.band.Gain
	}

	return out
}

// Bands returns a copy of every band's parameters.
func (b *Bank) Bands() []Band {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Band, len(b.filters))
	for i, f := range b.filters {
		out[i] = f.band
	}

	return out
}

// SampleRate returns the current sample rate.
func (b *Bank) SampleRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sampleRate
}

// UpdateSampleRate propagates a new rate to every band when it differs
// from the current one.
func (b *Bank) UpdateSampleRate(sampleRate float64) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if sampleRate == b.sampleRate {
		return
	}

	b.sampleRate = sampleRate
	for _, f := range b.filters {
		f.SetSampleRate(sampleRate)
	}
}

// Reset clears the state of every band.
func (b *Bank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetLocked()
}

// SetEnabled toggles the bank. A disabled bank leaves buffers untouched.
// Enabling a disabled bank clears all filter state.
func (b *Bank) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if enabled && !b.enabled {
		b.resetLocked()
	}

	b.enabled = enabled
}

// Enabled reports whether the bank processes audio.
func (b *Bank) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.enabled
}

// ProcessBuffer runs every band over an interleaved buffer in band order.
func (b *Bank) ProcessBuffer(buf []float32, frames, channels int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}

	for _, f := range b.filters {
		f.ProcessBuffer(buf, frames, channels)
	}
}

// MagnitudeDB returns the combined response of the cascade at freqHz.
func (b *Bank) MagnitudeDB(freqHz float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0.0
	for _, f := range b.filters {
		total += f.MagnitudeDB(freqHz)
	}

	return total
}

func (b *Bank) resetLocked() {
	for _, f := range b.filters {
		f.Reset()
	}
}
