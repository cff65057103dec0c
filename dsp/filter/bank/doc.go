// Package bank implements the multi-band parametric equalizer.
//
// A [Filter] is one EQ band: it owns its [Band] parameters, the derived
// biquad coefficients and one delay state per channel. A [Bank] cascades an
// ordered set of filters over the same interleaved buffer, low band first.
//
// Gain and sample-rate setters are idempotent; they recompute coefficients
// only when the value changes. Processing never allocates.
package bank
