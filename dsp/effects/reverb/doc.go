// Package reverb provides a stereo Schroeder/Freeverb-style room reverb
// for the output effects chain.
package reverb
