package effectchain

import (
	"maps"
	"math"
)

// Parameter keys understood by the built-in stages.
const (
	ParamGainDB      = "gainDB"
	ParamBassDB      = "bassDB"
	ParamTrebleDB    = "trebleDB"
	ParamMix         = "mix"
	ParamRoomSize    = "roomSize"
	ParamDamp        = "damp"
	ParamThresholdDB = "thresholdDB"
)

// Params holds the parameters of one chain stage.
type Params struct {
	Type     string
	Bypassed bool
	Num      map[string]float64
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	p.Num = maps.Clone(p.Num)
	if p.Num == nil {
		p.Num = make(map[string]float64)
	}
	return p
}
