// Package main searches solver tunables with CMA-ES for the cheapest
// settings that still keep the velocity field close to divergence-free.
package main

import (
	"math"

	"github.com/pthm-cable/fluid/config"
)

// Param is one tunable of config.FluidConfig with its search bounds.
type Param struct {
	Name     string
	Min, Max float64
	Integer  bool // rounded before it is written back

	get func(*config.FluidConfig) float64
	set func(*config.FluidConfig, float64)
}

// ParamVector is the ordered set of tunables the optimizer moves. CMA-ES works
// in the unit cube; Normalize and Denormalize map to and from raw values.
type ParamVector struct {
	Params []Param
}

// NewParamVector returns the projection tunables: Jacobi iterations, pressure
// warm start, vorticity strength and velocity dissipation.
func NewParamVector() *ParamVector {
	return &ParamVector{Params: []Param{
		{
			Name: "pressure_iterations", Min: 1, Max: 80, Integer: true,
			get: func(f *config.FluidConfig) float64 { return float64(f.PressureIterations) },
			set: func(f *config.FluidConfig, v float64) { f.PressureIterations = int(v) },
		},
		{
			Name: "pressure_retain", Min: 0, Max: 1,
			get: func(f *config.FluidConfig) float64 { return f.PressureRetain },
			set: func(f *config.FluidConfig, v float64) { f.PressureRetain = v },
		},
		{
			Name: "vorticity", Min: 0, Max: 60,
			get: func(f *config.FluidConfig) float64 { return f.Vorticity },
			set: func(f *config.FluidConfig, v float64) { f.Vorticity = v },
		},
		{
			Name: "velocity_dissipation", Min: 0.9, Max: 1,
			get: func(f *config.FluidConfig) float64 { return f.VelocityDissipation },
			set: func(f *config.FluidConfig, v float64) { f.VelocityDissipation = v },
		},
	}}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Params)
}

// Normalize maps raw values into [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = (raw[i] - p.Min) / (p.Max - p.Min)
	}
	return out
}

// Denormalize maps [0,1] values back to raw values. The result is not clamped.
func (pv *ParamVector) Denormalize(unit []float64) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = p.Min + unit[i]*(p.Max-p.Min)
	}
	return out
}

// Clamp bounds every value and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		x := math.Min(math.Max(v[i], p.Min), p.Max)
		if p.Integer {
			x = math.Round(x)
		}
		out[i] = x
	}
	return out
}

// Apply writes clamped values into cfg.Fluid.
func (pv *ParamVector) Apply(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Params[i].set(&cfg.Fluid, v)
	}
}

// Extract reads the current values from cfg.Fluid.
func (pv *ParamVector) Extract(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Params))
	for i, p := range pv.Params {
		out[i] = p.get(&cfg.Fluid)
	}
	return out
}
