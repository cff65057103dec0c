package dynamics

import "math"

const (
	normalizerTargetRMS = 0.25
	normalizerMinGain   = 0.5
	normalizerMaxGain   = 2.5
	normalizerRMSDecay  = 0.995
	normalizerGainRate  = 0.001

	// rmsFloor keeps the gain target finite on digital silence.
	rmsFloor = 1e-9
)

// Normalizer drives the signal toward a fixed RMS level:
//
//	rms  = rms*0.995 + instRMS*0.005
//	gain += (clamp(0.25/rms, 0.5, 2.5) - gain) * 0.001
//
// The running estimate starts at the target so a fresh normalizer is
// neutral.
type Normalizer struct {
	rms  float64
	gain float64
}

// NewNormalizer returns a normalizer at unity gain.
func NewNormalizer() *Normalizer {
	n := &Normalizer{}
	n.Reset()
	return n
}

// ProcessStereo normalizes one stereo sample pair.
func (n *Normalizer) ProcessStereo(left, right float64) (float64, float64) {
	g := n.step(math.Sqrt(0.5 * (left*left + right*right)))
	return left * g, right * g
}

// ProcessSample normalizes one mono sample.
func (n *Normalizer) ProcessSample(x float64) float64 {
	return x * n.step(math.Abs(x))
}

// Gain returns the currently applied linear gain.
func (n *Normalizer) Gain() float64 { return n.gain }

// RMS returns the running RMS estimate.
func (n *Normalizer) RMS() float64 { return n.rms }

// Reset restores the neutral state.
func (n *Normalizer) Reset() {
	n.rms = normalizerTargetRMS
	n.gain = 1
}

func (n *Normalizer) step(inst float64) float64 {
	n.rms = n.rms*normalizerRMSDecay + inst*(1-normalizerRMSDecay)

	target := normalizerMaxGain
	if n.rms > rmsFloor {
		target = math.Min(math.Max(normalizerTargetRMS/n.rms, normalizerMinGain), normalizerMaxGain)
	}

	n.gain += (target - n.gain) * normalizerGainRate

	return n.gain
}
