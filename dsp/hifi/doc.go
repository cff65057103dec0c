// Package hifi implements the per-sample spatial and dynamics enhancer that
// runs after the equalizer.
//
// Stages run in a fixed order, each only when its parameter is active:
//
//  1. stereo widening (side scaled by 1 + 2*width)
//  2. crossfeed (opposite channel through a short delay, level*0.6)
//  3. bass boost (100 Hz low shelf blended at bassGainDB/12)
//  4. peak compression (threshold 0.5, 3:1)
//  5. loudness normalization (target RMS 0.25, gain in [0.5, 2.5])
//  6. soft clip, tanh(0.9x)/0.9, always
//
// Mono buffers skip stages 1 and 2.
package hifi
