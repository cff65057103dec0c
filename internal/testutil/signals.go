// Package testutil holds signal generators and tolerance checks shared by
// the package tests. Generators produce interleaved float32 PCM, the format
// every render-path processor consumes.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns frames of an interleaved sine at freqHz, identical on every
// channel.
func Sine(freqHz, sampleRate, amplitude float64, frames, channels int) []float32 {
	out := make([]float32, frames*channels)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := 0; i < frames; i++ {
		v := float32(amplitude * math.Sin(step*float64(i)))
		for ch := 0; ch < channels; ch++ {
			out[i*channels+ch] = v
		}
	}
	return out
}

// Noise returns seeded white noise in [-amplitude, amplitude], independent
// per channel.
func Noise(seed int64, amplitude float64, frames, channels int) []float32 {
	out := make([]float32, frames*channels)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// DC returns a constant-valued buffer of n samples.
func DC(value float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Stereo interleaves separate left and right channels. The shorter input
// bounds the frame count.
func Stereo(left, right []float32) []float32 {
	n := min(len(left), len(right))
	out := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		out[2*i] = left[i]
		out[2*i+1] = right[i]
	}
	return out
}

// Copy returns a fresh copy of buf.
func Copy(buf []float32) []float32 {
	return append([]float32(nil), buf...)
}
