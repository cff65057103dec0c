// Package pcm defines the decoded-audio value exchanged between decoders,
// the file analyser and the offline renderer.
package pcm

import (
	"errors"
	"time"
)

var errChannels = errors.New("pcm: channels must be 1 or 2")

// Buffer holds interleaved float32 samples in [-1, 1].
type Buffer struct {
	Samples    []float32
	Channels   int
	SampleRate float64
}

// Validate reports whether the buffer can be rendered.
func (b *Buffer) Validate() error {
	if b.Channels != 1 && b.Channels != 2 {
		return errChannels
	}
	if b.SampleRate <= 0 {
		return errors.New("pcm: sample rate must be > 0")
	}
	return nil
}

// Frames returns the number of whole frames.
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playing time.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / b.SampleRate * float64(time.Second))
}

// Mono returns the channel average as float64.
func (b *Buffer) Mono() []float64 {
	n := b.Frames()
	out := make([]float64, n)

	if b.Channels == 1 {
		for i := range out {
			out[i] = float64(b.Samples[i])
		}
		return out
	}

	for i := range out {
		out[i] = 0.5 * (float64(b.Samples[2*i]) + float64(b.Samples[2*i+1]))
	}
	return out
}

// Float64 returns the interleaved samples widened to float64.
func (b *Buffer) Float64() []float64 {
	out := make([]float64, len(b.Samples))
	for i, v := range b.Samples {
		out[i] = float64(v)
	}
	return out
}
