package main

import (
	"github.com/pthm-cable/miasma/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Solver
			{Name: "diffusion_rate", Path: "solver.diffusion_rate", Min: 0.02, Max: 0.45, Default: 0.1},
			{Name: "decay_rate", Path: "solver.decay_rate", Min: 0.0005, Max: 0.02, Default: 0.002},
			{Name: "gradient_scale", Path: "solver.gradient_scale", Min: 0.5, Max: 6.0, Default: 2.0},
			{Name: "max_velocity", Path: "solver.max_velocity", Min: 0.5, Max: 3.0, Default: 1.5},
			// Spawner
			{Name: "probability_scale", Path: "spawner.probability_scale", Min: 0.005, Max: 0.3, Default: 0.05},
			{Name: "probability_exponent", Path: "spawner.probability_exponent", Min: 0.5, Max: 2.5, Default: 1.0},
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
		v[i] = spec.Default
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Solver.DiffusionRate = c[0]
	cfg.Solver.DecayRate = c[1]
	cfg.Solver.GradientScale = c[2]
	cfg.Solver.MaxVelocity = c[3]
	cfg.Spawner.ProbabilityScale = c[4]
	cfg.Spawner.ProbabilityExponent = c[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Solver.DiffusionRate,
		cfg.Solver.DecayRate,
		cfg.Solver.GradientScale,
		cfg.Solver.MaxVelocity,
		cfg.Spawner.ProbabilityScale,
		cfg.Spawner.ProbabilityExponent,
	}
}
