// Package preset holds the equalizer preset table and the per-genre curves
// used for recommendations. The table is data, embedded at build time and
// parsed once.
package preset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Bands is the number of gains in every preset.
const (
	Bands = 10

	MinGainDB = -12.0
	MaxGainDB = 12.0
)

// FlatID is the neutral preset.
const FlatID = "flat"

// ErrUnknownPreset is returned when a preset id is not in the table.
var ErrUnknownPreset = errors.New("preset: unknown preset")

//go:embed presets.json
var embedded []byte

// Gains is a fixed-length ten-band curve in dB.
type Gains [Bands]float64

// Preset is one named EQ curve plus its spatial suggestions.
type Preset struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Gains         Gains   `json:"gains"`
	SurroundLevel float64 `json:"surroundLevel"`
	ReverbLevel   float64 `json:"reverbLevel"`
	StereoWidth   float64 `json:"stereoWidth"`
}

// Validate reports whether every gain lies in range and the levels are in
// [0, 1].
func (p Preset) Validate() error {
	if p.ID == "" {
		return errors.New("preset: empty id")
	}

	for i, g := range p.Gains {
		if g < MinGainDB || g > MaxGainDB || math.IsNaN(g) {
			return fmt.Errorf("preset %q: band %d gain %v out of range", p.ID, i, g)
		}
	}

	for name, v := range map[string]float64{
		"surroundLevel": p.SurroundLevel,
		"reverbLevel":   p.ReverbLevel,
		"stereoWidth":   p.StereoWidth,
	} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("preset %q: %s %v out of [0, 1]", p.ID, name, v)
		}
	}

	return nil
}

// Table is an immutable set of presets and genre curves.
type Table struct {
	presets []Preset
	byID    map[string]int
	genres  map[string]Gains
}

type tableFile struct {
	Presets     []Preset         `json:"presets"`
	GenreCurves map[string]Gains `json:"genreCurves"`
}

// Parse decodes and validates a preset table.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("preset: decode table: %w", err)
	}

	t := &Table{
		presets: f.Presets,
		byID:    make(map[string]int, len(f.Presets)),
		genres:  f.GenreCurves,
	}

	for i, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byID[p.ID]; dup {
			return nil, fmt.Errorf("preset: duplicate id %q", p.ID)
		}
		t.byID[p.ID] = i
	}

	for genre, g := range f.GenreCurves {
		if err := (Preset{ID: genre, Gains: g}).Validate(); err != nil {
			return nil, fmt.Errorf("preset: genre curve: %w", err)
		}
	}

	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table. The embedded data is covered by tests;
// a parse failure is a build defect and panics.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(embedded)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})

	return defaultTable
}

// Get returns the preset with the given id.
func (t *Table) Get(id string) (Preset, error) {
	i, ok := t.byID[id]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}

	return t.presets[i], nil
}

// All returns a copy of every preset in table order.
func (t *Table) All() []Preset {
	return slices.Clone(t.presets)
}

// GenreCurve returns the recommendation base curve for genre. Unknown
// genres yield a flat curve and false.
func (t *Table) GenreCurve(genre string) (Gains, bool) {
	g, ok := t.genres[genre]
	return g, ok
}
