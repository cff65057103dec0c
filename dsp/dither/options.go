package dither

import (
	"fmt"
	"math/rand/v2"
)

type config struct {
	ditherType Type
	shaping    bool
	rng        *rand.Rand
}

func defaultConfig() config {
	return config{ditherType: TypeTriangular}
}

// Option configures a Quantizer.
type Option func(*config) error

// WithType sets the dither distribution. Default TypeTriangular.
func WithType(t Type) Option {
	return func(c *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type %d", int(t))
		}
		c.ditherType = t
		return nil
	}
}

// WithShaping enables first-order error feedback, pushing the quantization
// noise toward high frequencies.
func WithShaping(enabled bool) Option {
	return func(c *config) error {
		c.shaping = enabled
		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return nil
	}
}
