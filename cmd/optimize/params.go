// Package main provides CMA-ES tuning of tribe simulation parameters.
package main

import (
	"math"

	"github.com/pthm-cable/tribes/config"
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
			// Member reactions
			{Name: "task_seconds", Path: "simulation.task_seconds", Min: 1, Max: 20, Default: 5},
			{Name: "explore_radius", Path: "simulation.explore_radius", Min: 10, Max: 200, Default: 60},
			// Engine
			{Name: "work_memory_radius", Path: "engine.work_memory_radius", Min: 2, Max: 50, Default: 10},
			{Name: "building_memory_radius", Path: "engine.building_memory_radius", Min: 5, Max: 60, Default: 20},
			{Name: "max_injection_depth", Path: "engine.max_injection_depth", Min: 4, Max: 32, Default: 16},
			// Growth, applied to every tribe
			{Name: "reproduction_cost_scale", Path: "tribes[].reproduction_cost", Min: 0.25, Max: 3, Default: 1},
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
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to cfg. The tribes slice is
// replaced, never written through, so configs may share a base.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Simulation.TaskSeconds = clamped[0]
	cfg.Simulation.ExploreRadius = clamped[1]
	cfg.Engine.WorkMemoryRadius = clamped[2]
	cfg.Engine.BuildingMemoryRadius = clamped[3]
	cfg.Engine.MaxInjectionDepth = int(math.Round(clamped[4]))

	scale := clamped[5]
	tribes := make([]config.TribeConfig, len(cfg.Tribes))
	for i, tc := range cfg.Tribes {
		tc.ReproductionCost = max(1, int(math.Round(float64(tc.ReproductionCost)*scale)))
		tribes[i] = tc
	}
	cfg.Tribes = tribes
}

// ExtractFromConfig extracts current parameter values from cfg. The
// reproduction scale is relative, so it always reads as 1.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Simulation.TaskSeconds,
		cfg.Simulation.ExploreRadius,
		cfg.Engine.WorkMemoryRadius,
		cfg.Engine.BuildingMemoryRadius,
		float64(cfg.Engine.MaxInjectionDepth),
		1,
	}
}
