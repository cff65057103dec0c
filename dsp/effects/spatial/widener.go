package spatial

import (
	"fmt"
	"math"
)

// Widener scales the side component of a stereo pair by 1 + 2*amount.
// An amount of 0 leaves the image unchanged, 1 triples the side signal.
//
// This processor is stereo, real-time safe, and not thread-safe.
type Widener struct {
	amount float64
	factor float64
}

// NewWidener returns a widener at the given amount in [0, 1].
func NewWidener(amount float64) (*Widener, error) {
	w := &Widener{}
	if err := w.SetAmount(amount); err != nil {
		return nil, err
	}

	return w, nil
}

// SetAmount sets the widening amount in [0, 1].
func (w *Widener) SetAmount(amount float64) error {
	if amount < 0 || amount > 1 || math.IsNaN(amount) {
		return fmt.Errorf("stereo widener amount must be in [0, 1]: %f", amount)
	}

	w.amount = amount
	w.factor = 1 + 2*amount

	return nil
}

// Amount returns the current widening amount.
func (w *Widener) Amount() float64 { return w.amount }

// ProcessStereo widens a single stereo sample pair.
func (w *Widener) ProcessStereo(left, right float64) (float64, float64) {
	mid := (left + right) * 0.5
	side := (left - right) * 0.5 * w.factor

	return mid + side, mid - side
}
