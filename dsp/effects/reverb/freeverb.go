package reverb

import (
	"fmt"
	"math"
)

const (
	numCombs     = 8
	numAllpasses = 4

	fixedGain     = 0.015
	wetScale      = 3.0
	stereoSpread  = 23
	tuningRate    = 44100.0
	allpassFeed   = 0.5
	roomScale     = 0.28
	roomOffset    = 0.7
	dampScale     = 0.4
	denormalFloor = 1e-23

	defaultRoomSize = 0.5
	defaultDamp     = 0.5
)

// Comb and allpass lengths in samples at 44.1 kHz. The right channel adds
// stereoSpread to every length.
var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

type comb struct {
	feedback    float64
	filterStore float64
	damp1       float64
	damp2       float64
	buffer      []float64
	index       int
}

func (c *comb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = output*c.damp2 + c.filterStore*c.damp1
	if math.Abs(c.filterStore) < denormalFloor {
		c.filterStore = 0
	}
	c.buffer[c.index] = input + c.filterStore*c.feedback
	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}
	return output
}

func (c *comb) reset() {
	clear(c.buffer)
	c.index = 0
	c.filterStore = 0
}

type allpass struct {
	buffer []float64
	index  int
}

func (a *allpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	a.buffer[a.index] = input + bufOut*allpassFeed
	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}
	return bufOut - input
}

func (a *allpass) reset() {
	clear(a.buffer)
	a.index = 0
}

type channel struct {
	combs   [numCombs]comb
	allpass [numAllpasses]allpass
}

func newChannel(scale float64, spread int) channel {
	var ch channel
	for i, n := range combTuning {
		ch.combs[i].buffer = make([]float64, scaledLength(n+spread, scale))
	}
	for i, n := range allpassTuning {
		ch.allpass[i].buffer = make([]float64, scaledLength(n+spread, scale))
	}
	return ch
}

func (ch *channel) process(input float64) float64 {
	var acc float64
	for i := range ch.combs {
		acc += ch.combs[i].process(input)
	}
	for i := range ch.allpass {
		acc = ch.allpass[i].process(acc)
	}
	return acc
}

func (ch *channel) reset() {
	for i := range ch.combs {
		ch.combs[i].reset()
	}
	for i := range ch.allpass {
		ch.allpass[i].reset()
	}
}

func scaledLength(n int, scale float64) int {
	return max(1, int(math.Round(float64(n)*scale)))
}

// Reverb is a stereo Freeverb. Both channels share one mono feed into
// eight damped combs and four allpasses per side; the right side is
// detuned for decorrelation. Delay lengths scale with the sample rate.
//
// Mix blends the dry and wet signals: out = (1-mix)*dry + mix*wet.
type Reverb struct {
	sampleRate float64
	mix        float64
	roomSize   float64
	damp       float64

	left, right channel
}

// New constructs a reverb at the given sample rate with mix 0.
func New(sampleRate float64) (*Reverb, error) {
	r := &Reverb{roomSize: defaultRoomSize, damp: defaultDamp}
	if err := r.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return r, nil
}

// SetSampleRate reallocates the delay network for a new rate. History is
// discarded.
func (r *Reverb) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("reverb sample rate must be positive and finite: %f", sampleRate)
	}

	scale := sampleRate / tuningRate
	r.sampleRate = sampleRate
	r.left = newChannel(scale, 0)
	r.right = newChannel(scale, stereoSpread)
	r.applyRoom()

	return nil
}

// SetMix sets the wet/dry blend in [0, 1].
func (r *Reverb) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("reverb mix must be in [0, 1]: %f", mix)
	}
	r.mix = mix
	return nil
}

// SetRoomSize sets the room size in [0, 1].
func (r *Reverb) SetRoomSize(size float64) error {
	if size < 0 || size > 1 || math.IsNaN(size) {
		return fmt.Errorf("reverb room size must be in [0, 1]: %f", size)
	}
	r.roomSize = size
	r.applyRoom()
	return nil
}

// SetDamp sets high-frequency damping in [0, 1].
func (r *Reverb) SetDamp(damp float64) error {
	if damp < 0 || damp > 1 || math.IsNaN(damp) {
		return fmt.Errorf("reverb damping must be in [0, 1]: %f", damp)
	}
	r.damp = damp
	r.applyRoom()
	return nil
}

// Mix returns the wet/dry blend.
func (r *Reverb) Mix() float64 { return r.mix }

// RoomSize returns the room size.
func (r *Reverb) RoomSize() float64 { return r.roomSize }

// ProcessStereo processes one stereo sample pair.
func (r *Reverb) ProcessStereo(left, right float64) (float64, float64) {
	if r.mix == 0 {
		return left, right
	}

	in := (left + right) * fixedGain
	wetL := r.left.process(in) * wetScale
	wetR := r.right.process(in) * wetScale
	dry := 1 - r.mix

	return dry*left + r.mix*wetL, dry*right + r.mix*wetR
}

// ProcessSample processes one mono sample through the left network.
func (r *Reverb) ProcessSample(x float64) float64 {
	if r.mix == 0 {
		return x
	}

	wet := r.left.process(2*x*fixedGain) * wetScale
	return (1-r.mix)*x + r.mix*wet
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (r *Reverb) applyRoom() {
	feedback := r.roomSize*roomScale + roomOffset
	damp := r.damp * dampScale

	for _, ch := range []*channel{&r.left, &r.right} {
		for i := range ch.combs {
			ch.combs[i].feedback = feedback
			ch.combs[i].damp1 = damp
			ch.combs[i].damp2 = 1 - damp
		}
	}
}
