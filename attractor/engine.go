package attractor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/geom"
	"github.com/pthm-cable/attract/pool"
)

// baselineRate is the update rate MaxSpeed is expressed against.
const baselineRate = 60

// velocityDamping is applied to a particle's velocity on every movement step.
const velocityDamping = 0.5

// TickStats summarizes one Attract call.
type TickStats struct {
	Pools     int // pools snapshotted and written back
	Particles int // particles inspected
	Captured  int // particles killed inside the destination radius
	Moved     int // particles repositioned
	Delayed   int // particles still inside their delay window
}

// Add accumulates o into s.
func (s *TickStats) Add(o TickStats) {
	s.Pools += o.Pools
	s.Particles += o.Particles
	s.Captured += o.Captured
	s.Moved += o.Moved
	s.Delayed += o.Delayed
}

type outcome uint8

const (
	outcomeDelayed outcome = iota
	outcomeMoved
	outcomeCaptured
)

// Attract runs one attraction tick over every target pool. dt is the scaled
// frame delta and unscaledDt the real one; UpdateMode picks between them.
//
// Each pool is read, processed and written back as a unit. If a pool fails
// to snapshot or commit, the remaining pools are skipped for this tick and
// the error is returned; pools already committed keep their update.
func (a *Attractor) Attract(dt, unscaledDt float64) (TickStats, error) {
	var stats TickStats
	if a.disposed {
		return stats, nil
	}

	anchor := a.anchor.Position()
	speed := a.stepSpeed(dt, unscaledDt)

	for _, p := range a.pools {
		if p == nil {
			continue
		}
		if p.Count() == 0 {
			continue
		}

		dst := DestinationFor(p, anchor)

		particles, err := p.Snapshot(a.scratch)
		a.scratch = particles
		if err != nil {
			return stats, fmt.Errorf("attractor %q: snapshot: %w", a.name, err)
		}

		for i := range particles {
			switch a.step(&particles[i], dst, speed) {
			case outcomeCaptured:
				stats.Captured++
				a.notifyAttracted()
			case outcomeMoved:
				stats.Moved++
			default:
				stats.Delayed++
			}
		}

		if err := p.WriteBack(particles, len(particles)); err != nil {
			return stats, fmt.Errorf("attractor %q: write-back: %w", a.name, err)
		}
		stats.Pools++
		stats.Particles += len(particles)
	}
	return stats, nil
}

// stepSpeed converts MaxSpeed into a per-tick distance.
func (a *Attractor) stepSpeed(dt, unscaledDt float64) float64 {
	frameDelta := dt
	if a.cfg.UpdateMode == UnscaledTime {
		frameDelta = unscaledDt
	}
	return a.cfg.MaxSpeed * baselineRate * frameDelta
}

// step decides a single particle's fate for this tick. A captured particle
// is not also moved.
func (a *Attractor) step(p *pool.Particle, dst r3.Vec, speed float64) outcome {
	if p.RemainingLifetime > 0 && geom.Distance(p.Position, dst) < a.cfg.DestinationRadius {
		p.RemainingLifetime = 0
		return outcomeCaptured
	}

	delay := p.StartLifetime * a.cfg.DelayRate
	duration := p.StartLifetime - delay
	elapsed := math.Max(0, p.StartLifetime-p.RemainingLifetime-delay)

	// duration <= 0 only happens for particles with no start lifetime
	if elapsed <= 0 || duration <= 0 {
		return outcomeDelayed
	}

	p.Position = attractedPosition(p.Position, dst, duration, elapsed, speed, a.cfg.Movement)
	p.Velocity = r3.Scale(velocityDamping, p.Velocity)
	return outcomeMoved
}

// attractedPosition applies a movement profile. Linear spreads the step over
// the attraction duration toward the real target; Smooth and Sphere first
// pull the target toward current by the elapsed fraction, then take a full
// step. The result never passes the (possibly re-targeted) target.
func attractedPosition(current, target r3.Vec, duration, elapsed, speed float64, m Movement) r3.Vec {
	switch m {
	case Linear:
		speed /= duration
	case Smooth:
		target = geom.Lerp(current, target, elapsed/duration)
	case Sphere:
		target = geom.Slerp(current, target, elapsed/duration)
	}
	return geom.MoveTowards(current, target, speed)
}
