// Package spectrum turns real frames into one-sided magnitude spectra.
//
// A [Transformer] owns its FFT plan, analysis window and scratch buffers,
// so repeated calls on the render path do not allocate. Magnitudes are
// normalised by the window's coherent gain: a full-scale sine centred on a
// bin reads 1.0 (0 dB).
package spectrum
