package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/geom"
)

// flushTelemetry emits a stats window once the collector has covered a
// window of scaled simulation time.
func (s *Scene) flushTelemetry() {
	if !s.collector.ShouldFlush() {
		return
	}

	stats := s.collector.Flush(s.tick, s.clock.Time, s.LiveParticles(), s.sampleDistances())
	perfStats := s.perfCollector.Stats()
	s.lastStats = stats

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteTelemetry(stats); err != nil {
		s.logger.Error("failed to write telemetry", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		s.logger.Error("failed to write perf", "error", err)
	}
}

// sampleDistances measures how far each live particle is from the
// destination of every attractor pulling on its pool. A pool shared by two
// attractors contributes a sample per attractor.
func (s *Scene) sampleDistances() []float64 {
	s.distScratch = s.distScratch[:0]
	for _, a := range s.attractors {
		for _, p := range a.Pools() {
			if p == nil || p.Count() == 0 {
				continue
			}
			dst := a.Destination(p)

			var err error
			s.snapScratch, err = p.Snapshot(s.snapScratch)
			if err != nil {
				s.logger.Warn("distance sample failed", "attractor", a.Name(), "error", err)
				continue
			}
			for _, particle := range s.snapScratch {
				if !particle.Alive() {
					continue
				}
				s.distScratch = append(s.distScratch, geom.Distance(particle.Position, dst))
			}
		}
	}
	return s.distScratch
}

// ParticleView is a live particle placed in world space for drawing.
type ParticleView struct {
	Position  r3.Vec
	LifeRatio float64 // remaining / start lifetime, in [0, 1]
	Emitter   int     // index into Scene.Emitters
}

// WorldParticles appends every live particle, mapped to world space, to dst.
func (s *Scene) WorldParticles(dst []ParticleView) []ParticleView {
	dst = dst[:0]
	for i, e := range s.emitters {
		var err error
		s.snapScratch, err = e.Snapshot(s.snapScratch)
		if err != nil {
			continue
		}
		for _, p := range s.snapScratch {
			if !p.Alive() {
				continue
			}
			ratio := 1.0
			if p.StartLifetime > 0 {
				ratio = min(p.RemainingLifetime/p.StartLifetime, 1)
			}
			dst = append(dst, ParticleView{Position: e.ToWorld(p.Position), LifeRatio: ratio, Emitter: i})
		}
	}
	return dst
}
