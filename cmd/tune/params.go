package main

import (
	"github.com/pthm-cable/heroflow/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the orbit parameter set. Defaults come from cfg so
// the search starts at whatever preset is being tuned.
func NewParamVector(cfg *config.Config) *ParamVector {
	a := cfg.Field.Attract
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "influence_radius", Path: "field.attract.influence_radius", Min: 120, Max: 600, Default: a.InfluenceRadius},
			{Name: "exponent", Path: "field.attract.exponent", Min: 0.5, Max: 4, Default: a.Exponent},
			{Name: "attract", Path: "field.attract.attract", Min: 0, Max: 1.5, Default: a.Attract},
			{Name: "orbit", Path: "field.attract.orbit", Min: 0, Max: 1.5, Default: a.Orbit},
			{Name: "repel", Path: "field.attract.repel", Min: 0, Max: 1.5, Default: a.Repel},
			{Name: "friction", Path: "field.friction", Min: 0.85, Max: 0.999, Default: cfg.Field.Friction},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = clampTo(spec.Default, spec)
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = clampTo(v[i], spec)
	}
	return clamped
}

func clampTo(v float64, spec ParamSpec) float64 {
	return min(max(v, spec.Min), spec.Max)
}

// ApplyToConfig writes parameter values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	a := &cfg.Field.Attract
	a.InfluenceRadius = c[0]
	a.Exponent = c[1]
	a.Attract = c[2]
	a.Orbit = c[3]
	a.Repel = c[4]
	cfg.Field.Friction = c[5]

	// The orbit ring must stay inside the influence radius.
	a.OrbitRadius = min(a.OrbitRadius, a.InfluenceRadius*0.9)
}

// ExtractFromConfig reads current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	a := cfg.Field.Attract
	return []float64{
		a.InfluenceRadius,
		a.Exponent,
		a.Attract,
		a.Orbit,
		a.Repel,
		cfg.Field.Friction,
	}
}
