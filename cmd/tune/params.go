package main

import "github.com/pthm-cable/attract/config"

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the tunables searched for one attractor.
type ParamVector struct {
	Specs     []ParamSpec
	Attractor int // index into config.Attractors
}

// NewParamVector creates the standard tunable set for attractor index idx.
func NewParamVector(idx int) *ParamVector {
	return &ParamVector{
		Attractor: idx,
		Specs: []ParamSpec{
			{Name: "max_speed", Min: 0.02, Max: 2.0},
			{Name: "delay_rate", Min: 0.0, Max: 0.9},
			{Name: "destination_radius", Min: 0.2, Max: 3.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
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
		clamped[i] = max(spec.Min, min(v[i], spec.Max))
	}
	return clamped
}

// ApplyToConfig writes clamped values into the tuned attractor's config.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	a := &cfg.Attractors[pv.Attractor]
	a.MaxSpeed = clamped[0]
	a.DelayRate = clamped[1]
	a.DestinationRadius = clamped[2]
}

// ExtractFromConfig reads the tuned attractor's current values.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	a := cfg.Attractors[pv.Attractor]
	return []float64{a.MaxSpeed, a.DelayRate, a.DestinationRadius}
}
