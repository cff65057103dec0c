package spatial

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hifi/dsp/delay"
)

const (
	// crossfeedScale maps a [0, 1] crossfeed level onto the blend amount.
	crossfeedScale = 0.6

	// DefaultCrossfeedDelayMs approximates the interaural delay of a
	// listener between stereo speakers.
	DefaultCrossfeedDelayMs = 0.3
)

// Crossfeed mixes a delayed copy of each channel into the opposite one:
//
//	outL = (1-a)*L + a*delayed(R)
//	outR = (1-a)*R + a*delayed(L)
//
// with a = level * 0.6. One delay line is kept per channel.
type Crossfeed struct {
	sampleRate float64
	delayMs    float64
	amount     float64

	left, right *delay.Line
}

// NewCrossfeed creates a crossfeed stage. level is in [0, 1] and delayMs in
// [0, delay.MaxDelayMs].
func NewCrossfeed(sampleRate, level, delayMs float64) (*Crossfeed, error) {
	c := &Crossfeed{}
	if err := c.SetLevel(level); err != nil {
		return nil, err
	}

	c.sampleRate = sampleRate
	if err := c.SetDelay(delayMs); err != nil {
		return nil, err
	}

	return c, nil
}

// SetLevel sets the crossfeed level in [0, 1].
func (c *Crossfeed) SetLevel(level float64) error {
	if level < 0 || level > 1 || math.IsNaN(level) {
		return fmt.Errorf("crossfeed level must be in [0, 1]: %f", level)
	}

	c.amount = level * crossfeedScale

	return nil
}

// Amount returns the blend amount, level * 0.6.
func (c *Crossfeed) Amount() float64 { return c.amount }

// DelayMs returns the configured inter-channel delay.
func (c *Crossfeed) DelayMs() float64 { return c.delayMs }

// SetDelay resizes both delay lines. Existing history is discarded.
// Allocates; call from the control path only.
func (c *Crossfeed) SetDelay(delayMs float64) error {
	return c.rebuild(c.sampleRate, delayMs)
}

// SetSampleRate resizes the delay lines for a new rate, discarding history.
func (c *Crossfeed) SetSampleRate(sampleRate float64) error {
	return c.rebuild(sampleRate, c.delayMs)
}

func (c *Crossfeed) rebuild(sampleRate, delayMs float64) error {
	left, err := delay.FromMilliseconds(delayMs, sampleRate)
	if err != nil {
		return fmt.Errorf("crossfeed: %w", err)
	}

	right, err := delay.FromMilliseconds(delayMs, sampleRate)
	if err != nil {
		return fmt.Errorf("crossfeed: %w", err)
	}

	c.sampleRate = sampleRate
	c.delayMs = delayMs
	c.left, c.right = left, right

	return nil
}

// ProcessStereo applies crossfeed to one stereo sample pair.
func (c *Crossfeed) ProcessStereo(left, right float64) (float64, float64) {
	dl := c.left.Process(left)
	dr := c.right.Process(right)
	dry := 1 - c.amount

	return dry*left + c.amount*dr, dry*right + c.amount*dl
}

// Reset clears both delay lines.
func (c *Crossfeed) Reset() {
	c.left.Reset()
	c.right.Reset()
}
