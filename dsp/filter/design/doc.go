// Package design provides RBJ audio-EQ-cookbook coefficient designers.
//
// Every designer returns [biquad.Coefficients] normalised so a0 = 1, using
// w0 = 2*pi*f/fs, alpha = sin(w0)/(2Q) and A = 10^(gain/40). A frequency
// outside (0, Nyquist) or a non-finite sample rate yields the identity
// section, so a misconfigured band degrades to pass-through.
package design
