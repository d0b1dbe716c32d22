package main

import (
	"io"
	"log/slog"
	"sync"

	"github.com/pthm-cable/attract/config"
	"github.com/pthm-cable/attract/sim"
	"github.com/pthm-cable/attract/telemetry"
)

// FitnessEvaluator runs headless scenes and scores how close the capture
// fraction lands to the target.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	target      float64
	statsWindow float64
	logger      *slog.Logger

	mu           sync.Mutex
	lastFraction float64 // capture fraction from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		statsWindow: 2.0,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastFraction returns the mean capture fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastFraction() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastFraction
}

// rejectedFitness scores parameters the scene refused to build with.
const rejectedFitness = 1e6

// warmupWindows are skipped so the first, mostly in-flight particles don't
// skew the fraction.
const warmupWindows = 1

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fractions := make([]float64, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			fractions[idx], errs[idx] = fe.runScene(x, s)
		}(i, seed)
	}
	wg.Wait()

	var sum float64
	for i, f := range fractions {
		if errs[i] != nil {
			slog.Warn("scene rejected parameters", "params", x, "error", errs[i])
			fe.mu.Lock()
			fe.lastFraction = 0
			fe.mu.Unlock()
			return rejectedFitness
		}
		sum += f
	}
	mean := sum / float64(len(fractions))

	fe.mu.Lock()
	fe.lastFraction = mean
	fe.mu.Unlock()

	return fe.computeFitness(mean)
}

func (fe *FitnessEvaluator) computeFitness(fraction float64) float64 {
	d := fraction - fe.target
	return d * d
}

// runScene runs one headless scene and returns its post-warmup capture fraction.
func (fe *FitnessEvaluator) runScene(x []float64, seed int64) (float64, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	var captured, expired int
	windows := 0
	s, err := sim.NewScene(sim.Options{
		Config:         cfg,
		Seed:           seed,
		Logger:         fe.logger,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(w telemetry.WindowStats) {
			windows++
			if windows <= warmupWindows {
				return
			}
			captured += w.Captured
			expired += w.Expired
		},
	})
	if err != nil {
		return 0, err
	}
	defer s.Close()

	for s.Tick() < fe.maxTicks {
		s.UpdateHeadless()
	}

	if captured+expired == 0 {
		return s.CaptureFraction(), nil
	}
	return float64(captured) / float64(captured+expired), nil
}
