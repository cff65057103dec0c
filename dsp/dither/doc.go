// Package dither quantizes normalized float samples to integer PCM with
// optional dither noise and first-order noise shaping. The WAV writer uses
// it when rendering to 16 or 24 bits.
package dither
