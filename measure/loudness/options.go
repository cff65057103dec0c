package loudness

import "github.com/cwbudde/algo-hifi/dsp/core"

// MeterOption mutates the stream format of a Meter.
type MeterOption = core.ProcessorOption

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) MeterOption {
	return core.WithSampleRate(sampleRate)
}

// WithChannels sets the number of channels (1 for mono, 2 for stereo).
func WithChannels(channels int) MeterOption {
	return core.WithChannels(channels)
}
