// Package core holds the numeric and buffer helpers shared by every
// processor in the module: dB conversion with silence floors, clamping that
// absorbs NaN, soft clipping and interleaved-frame accounting.
package core
