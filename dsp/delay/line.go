// Package delay provides a fixed-size circular delay line.
package delay

import (
	"fmt"
	"math"
)

// MaxDelayMs bounds the delay that FromMilliseconds will allocate.
const MaxDelayMs = 50.0

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// FromMilliseconds returns a line whose Process output lags its input by
// round(ms * sampleRate / 1000) samples, at least one.
func FromMilliseconds(ms, sampleRate float64) (*Line, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0: %f", sampleRate)
	}
	if ms < 0 || ms > MaxDelayMs || math.IsNaN(ms) {
		return nil, fmt.Errorf("delay must be in [0, %g] ms: %f", MaxDelayMs, ms)
	}
	return New(max(1, int(math.Round(ms*sampleRate/1000))))
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago, 1 <= delay <= Len.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	delay = min(max(delay, 1), size)
	return d.buffer[(d.writePos-delay+size)%size]
}

// Process returns the sample stored Len samples ago and stores x in its
// place.
func (d *Line) Process(x float64) float64 {
	y := d.buffer[d.writePos]
	d.Write(x)
	return y
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}
