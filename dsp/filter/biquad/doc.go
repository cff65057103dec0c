// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// [Coefficients] hold one normalised second-order section. Processing uses
// Direct Form II Transposed against an explicit [State], so one coefficient
// set can drive any number of independent channels. [Section] bundles a
// coefficient set with a single state for mono use.
//
// This package provides the processing runtime only. Coefficient design
// (RBJ cookbook peaking, shelving and pass filters) lives in dsp/filter/design.
package biquad
