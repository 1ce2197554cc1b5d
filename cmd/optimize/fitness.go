package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/fluid/config"
	"github.com/pthm-cable/fluid/field"
	"github.com/pthm-cable/fluid/kernel"
	"github.com/pthm-cable/fluid/solver"
	"github.com/pthm-cable/fluid/splat"
)

// Simulation settings for one evaluation run.
const (
	evalDT          = 1.0 / 60
	evalBurstEvery  = 30 // steps between random bursts
	evalBurstSize   = 5
	deadFlowSpeed   = 1e-3
	deadFlowPenalty = 1.0
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params        *ParamVector
	steps         int
	seeds         []int64
	baseConfig    *config.Config
	iterationCost float64

	mu           sync.Mutex
	lastResidual float64 // residual from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, steps int, seeds []int64, baseCfg *config.Config, iterationCost float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:        params,
		steps:         steps,
		seeds:         seeds,
		baseConfig:    baseCfg,
		iterationCost: iterationCost,
	}
}

// LastResidual returns the mean relative divergence from the most recent evaluation.
func (fe *FitnessEvaluator) LastResidual() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResidual
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// divergence left after projection relative to the flow speed, plus a
// charge per Jacobi iteration.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.Apply(cfg, x)

	// Run all seeds in parallel
	residuals := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			residuals[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range residuals {
		total += r
	}
	residual := total / float64(len(residuals))

	fe.mu.Lock()
	fe.lastResidual = residual
	fe.mu.Unlock()

	return residual + fe.iterationCost*float64(cfg.Fluid.PressureIterations)
}

// runSimulation stirs a fresh solver with seeded random bursts and returns
// the RMS divergence of the final velocity over its RMS speed.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) float64 {
	backend := solver.NewCPUBackend(1)
	defer backend.Close()

	sim, err := solver.New[*field.Grid](backend, solver.OptionsFromConfig(cfg))
	if err != nil {
		return math.Inf(1)
	}
	defer sim.Close()

	rng := rand.New(rand.NewSource(seed))
	palette, err := splat.NewPalette("rainbow", cfg.Splat.ColorIntensity)
	if err != nil {
		return math.Inf(1)
	}

	for i := 0; i < fe.steps; i++ {
		if i%evalBurstEvery == 0 {
			splat.Random(sim, rng, palette, evalBurstSize)
		}
		sim.Step(evalDT)
	}

	return relativeDivergence(sim.Velocity())
}

// relativeDivergence measures how far velocity is from divergence-free.
func relativeDivergence(velocity *field.Grid) float64 {
	div, err := field.NewGrid(field.Scalar, velocity.W, velocity.H)
	if err != nil {
		return math.Inf(1)
	}
	kernel.Divergence(nil, div, velocity)

	n := float64(velocity.W * velocity.H)
	rms := float64(kernel.Norm(div)) / math.Sqrt(n)
	speed := math.Sqrt(2 * float64(kernel.KineticEnergy(velocity)) / n)
	if speed < deadFlowSpeed {
		return deadFlowPenalty
	}
	return rms / speed
}

// copyConfig creates a copy of the base config. Config holds only values,
// so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
