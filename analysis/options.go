package analysis

import (
	"fmt"

	"github.com/cwbudde/algo-hifi/preset"
)

const (
	// DefaultFFTSize is the analysis window length in samples.
	DefaultFFTSize = 2048

	// DefaultHistory is the number of windows kept for dynamic range and
	// average loudness.
	DefaultHistory = 50

	defaultSampleRate = 44100.0
)

type config struct {
	fftSize    int
	history    int
	sampleRate float64
	presets    *preset.Table
}

// Option configures an Analyzer.
type Option func(*config) error

// WithFFTSize sets the analysis window length. It must be a power of two
// of at least 256.
func WithFFTSize(n int) Option {
	return func(c *config) error {
		if n < 256 || n&(n-1) != 0 {
			return fmt.Errorf("analysis: fft size must be a power of two >= 256: %d", n)
		}
		c.fftSize = n
		return nil
	}
}

// WithHistory sets the rolling history capacity in windows.
func WithHistory(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("analysis: history must be >= 1: %d", n)
		}
		c.history = n
		return nil
	}
}

// WithSampleRate sets the initial stream sample rate.
func WithSampleRate(hz float64) Option {
	return func(c *config) error {
		if hz <= 0 {
			return fmt.Errorf("analysis: sample rate must be > 0: %v", hz)
		}
		c.sampleRate = hz
		return nil
	}
}

// WithPresets selects the table genre curves are read from.
func WithPresets(t *preset.Table) Option {
	return func(c *config) error {
		if t == nil {
			return fmt.Errorf("analysis: nil preset table")
		}
		c.presets = t
		return nil
	}
}
