package effectchain

import (
	"errors"
	"fmt"
)

// Built-in stage types.
const (
	TypePreamp  = "preamp"
	TypeTone    = "tone"
	TypeReverb  = "reverb"
	TypeLimiter = "limiter"
)

// DefaultOrder is the external chain order: gain staging first, the
// limiter last.
var DefaultOrder = []string{TypePreamp, TypeTone, TypeReverb, TypeLimiter}

// Context provides environmental information that stage runtimes need.
type Context struct {
	SampleRate float64
}

// Runtime is the per-stage processing and configuration contract.
// Configure runs on the control path and may allocate; Process must not.
type Runtime interface {
	Configure(ctx Context, params Params) error
	Process(buf []float32, frames, channels int)
	Reset()
}

// Factory builds one Runtime instance for a stage.
type Factory func(ctx Context) (Runtime, error)

// Registry maps stage type names to their factories.
type Registry struct {
	factories map[string]Factory
}

var (
	errDuplicateStage = errors.New("effectchain: duplicate stage type")

	// ErrUnknownStage is returned when a stage type is not registered or
	// not part of the chain.
	ErrUnknownStage = errors.New("effectchain: unknown stage type")
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in stages.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(TypePreamp, newPreamp)
	r.MustRegister(TypeTone, newTone)
	r.MustRegister(TypeReverb, newReverb)
	r.MustRegister(TypeLimiter, newLimiter)
	return r
}

// Register adds a factory for the given stage type.
func (r *Registry) Register(stageType string, factory Factory) error {
	if stageType == "" {
		return errors.New("effectchain: empty stage type")
	}

	if factory == nil {
		return errors.New("effectchain: nil factory")
	}

	if _, exists := r.factories[stageType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateStage, stageType)
	}

	r.factories[stageType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(stageType string, factory Factory) {
	if err := r.Register(stageType, factory); err != nil {
		panic(err.Error())
	}
}

// Lookup returns the factory for the given stage type, or nil.
func (r *Registry) Lookup(stageType string) Factory {
	return r.factories[stageType]
}
