// Package sim assembles emitters, attractors and telemetry into a runnable scene.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/attract/attractor"
	"github.com/pthm-cable/attract/config"
	"github.com/pthm-cable/attract/pool"
	"github.com/pthm-cable/attract/scheduler"
	"github.com/pthm-cable/attract/telemetry"
)

// Options configures scene construction.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	Logger         *slog.Logger // nil = slog.Default()
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // empty = no CSV output
	StatsCallback  func(telemetry.WindowStats)
}

// Scene holds the complete simulation state.
type Scene struct {
	cfg    *config.Config
	logger *slog.Logger

	world      *ecs.World
	rng        *rand.Rand
	clock      *scheduler.Clock
	registry   *scheduler.Registry
	emitters   []*pool.Emitter
	attractors []*attractor.Attractor
	anchors    []*OrbitAnchor

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool

	tick      int32
	lastStats telemetry.WindowStats

	// Run totals across all windows
	totalSpawned  int64
	totalCaptured int64
	totalExpired  int64

	snapScratch []pool.Particle
	distScratch []float64
}

// NewScene builds emitters and attractors from the config and starts every
// attractor on the scene's registry.
func NewScene(opts Options) (*Scene, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock, err := scheduler.NewClock(cfg.Time.TimeScale)
	if err != nil {
		return nil, err
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	s := &Scene{
		cfg:           cfg,
		logger:        logger,
		world:         ecs.NewWorld(),
		rng:           rand.New(rand.NewSource(opts.Seed)),
		clock:         clock,
		registry:      scheduler.NewRegistry(logger.With("component", "scheduler")),
		collector:     telemetry.NewCollector(statsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
	}

	if err := s.buildEmitters(); err != nil {
		return nil, err
	}
	if err := s.buildAttractors(); err != nil {
		s.Close()
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config snapshot", "error", err)
	}
	return s, nil
}

func (s *Scene) buildEmitters() error {
	for _, ec := range s.cfg.Emitters {
		space, err := ec.Space()
		if err != nil {
			return fmt.Errorf("emitter %q: %w", ec.Name, err)
		}
		e, err := pool.NewEmitter(s.world, ec.Name, space, ec.Transform(), ec.Settings(), s.rng)
		if err != nil {
			return err
		}
		s.emitters = append(s.emitters, e)
	}
	return nil
}

func (s *Scene) buildAttractors() error {
	for _, ac := range s.cfg.Attractors {
		tunables, err := ac.Tunables()
		if err != nil {
			return fmt.Errorf("attractor %q: %w", ac.Name, err)
		}

		pools := make([]pool.Pool, 0, len(ac.Pools))
		for _, name := range ac.Pools {
			i, ok := s.cfg.Derived.EmitterIndex[name]
			if !ok {
				return fmt.Errorf("attractor %q: unknown pool %q", ac.Name, name)
			}
			pools = append(pools, s.emitters[i])
		}

		anchor := &OrbitAnchor{
			Center: ac.Anchor(),
			Radius: ac.OrbitRadius,
			Speed:  ac.OrbitSpeed,
			clock:  s.clock,
		}
		a, err := attractor.New(ac.Name, tunables, anchor, pools...)
		if err != nil {
			return err
		}
		a.OnAttracted(s.recordCapture)
		if err := a.Start(s.registry); err != nil {
			return err
		}

		s.attractors = append(s.attractors, a)
		s.anchors = append(s.anchors, anchor)
	}
	return nil
}

func (s *Scene) recordCapture() {
	s.totalCaptured++
	s.collector.RecordCapture()
}

// Update runs the configured number of steps, each advancing real time by raw seconds.
func (s *Scene) Update(raw float64) {
	for i := 0; i < s.cfg.Time.StepsPerUpdate; i++ {
		s.Step(raw)
	}
}

// UpdateHeadless runs an update at the fixed configured dt.
func (s *Scene) UpdateHeadless() {
	s.Update(s.cfg.Time.DT)
}

// Step advances the scene by raw seconds of real time: emit, age, attract,
// then flush telemetry when a stats window completes.
func (s *Scene) Step(raw float64) {
	s.perfCollector.StartTick()
	dt, unscaledDt := s.clock.Advance(raw)
	s.collector.Advance(dt)

	s.perfCollector.StartPhase(telemetry.PhaseEmit)
	for _, e := range s.emitters {
		n := e.Emit(dt)
		s.totalSpawned += int64(n)
		s.collector.RecordSpawned(n)
	}

	s.perfCollector.StartPhase(telemetry.PhaseAge)
	for _, e := range s.emitters {
		expired, _ := e.Step(dt)
		s.totalExpired += int64(expired)
		s.collector.RecordExpired(expired)
	}

	s.perfCollector.StartPhase(telemetry.PhaseAttract)
	stats, failed := s.registry.Update(dt, unscaledDt)
	s.collector.RecordTick(stats)
	s.collector.RecordFailures(failed)

	s.tick++

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndTick(stats.Particles)
}

// RecordFrame records a rendered frame for FPS reporting.
func (s *Scene) RecordFrame() {
	s.perfCollector.RecordFrame()
}

// Close stops and disposes every attractor, clears the emitters, and
// rewrites the config snapshot with the final attractor tunables.
func (s *Scene) Close() error {
	for i, a := range s.attractors {
		s.cfg.Attractors[i].SetAttractor(a.Config())
		a.Dispose()
	}
	for _, e := range s.emitters {
		e.Clear()
	}
	if err := s.outputManager.WriteConfig(s.cfg); err != nil {
		s.logger.Error("failed to write config snapshot", "error", err)
	}
	return s.outputManager.Close()
}

// Tick returns the number of steps taken.
func (s *Scene) Tick() int32 {
	return s.tick
}

// Config returns the scene's configuration.
func (s *Scene) Config() *config.Config {
	return s.cfg
}

// Clock returns the scene clock.
func (s *Scene) Clock() *scheduler.Clock {
	return s.clock
}

// Registry returns the registry driving the scene's attractors.
func (s *Scene) Registry() *scheduler.Registry {
	return s.registry
}

// Emitters returns the scene's particle pools in config order.
func (s *Scene) Emitters() []*pool.Emitter {
	return s.emitters
}

// Attractors returns the scene's attractors in config order.
func (s *Scene) Attractors() []*attractor.Attractor {
	return s.attractors
}

// Anchors returns the attractor anchors, parallel to Attractors.
func (s *Scene) Anchors() []*OrbitAnchor {
	return s.anchors
}

// LastStats returns the most recently flushed stats window.
func (s *Scene) LastStats() telemetry.WindowStats {
	return s.lastStats
}

// PerfStats returns the current rolling performance stats.
func (s *Scene) PerfStats() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// LiveParticles returns the total particle count across emitters.
func (s *Scene) LiveParticles() int {
	n := 0
	for _, e := range s.emitters {
		n += e.Count()
	}
	return n
}

// Totals returns run-wide spawn, capture and age-expiry counts.
func (s *Scene) Totals() (spawned, captured, expired int64) {
	return s.totalSpawned, s.totalCaptured, s.totalExpired
}

// CaptureFraction returns captured / (captured + expired) over the whole run.
func (s *Scene) CaptureFraction() float64 {
	done := s.totalCaptured + s.totalExpired
	if done == 0 {
		return 0
	}
	return float64(s.totalCaptured) / float64(done)
}
