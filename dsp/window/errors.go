package window

import (
	"errors"
	"fmt"
)

// Errors returned by the gain helpers.
var (
	ErrEmpty     = errors.New("window: no coefficients")
	ErrZeroGain  = errors.New("window: coefficients sum to zero")
	ErrLength    = errors.New("window: sample and coefficient lengths differ")
	ErrHopSize   = errors.New("window: hop outside [1, len(coeffs)]")
	errBadLength = errors.New("window: length must be positive")
)

func validateLength(size int) error {
	if size > 0 {
		return nil
	}
	return fmt.Errorf("%w: %d", errBadLength, size)
}
