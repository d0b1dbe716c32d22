package main

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/attractor"
	"github.com/pthm-cable/attract/geom"
	"github.com/pthm-cable/attract/pool"
)

// PreviewParams holds the knobs exposed by the preview sliders.
type PreviewParams struct {
	MaxSpeed          float32
	DelayRate         float32
	DestinationRadius float32
	Lifetime          float32 // seconds
	LaunchSpeed       float32 // initial sideways speed, units per second
	Particles         int
}

const traceDT = 1.0 / 60.0

// destination sits off the origin so Sphere's arc about the origin is visible.
var destination = r3.Vec{X: 0, Y: 4}

// Trace is one particle's recorded path and whether it was captured.
type Trace struct {
	Points   []r3.Vec
	Captured bool
}

// tracePaths runs the attraction engine on a fan of particles launched from
// y = -4 and records their paths until every particle is captured or expires.
func tracePaths(p PreviewParams, m attractor.Movement) ([]Trace, error) {
	cfg := attractor.DefaultConfig()
	cfg.MaxSpeed = float64(p.MaxSpeed)
	cfg.DelayRate = float64(p.DelayRate)
	cfg.DestinationRadius = float64(p.DestinationRadius)
	cfg.Movement = m

	particles := make([]pool.Particle, p.Particles)
	traces := make([]Trace, p.Particles)
	for i := range particles {
		x := -8 + 16*float64(i)/float64(max(p.Particles-1, 1))
		particles[i] = pool.Particle{
			Position:          r3.Vec{X: x, Y: -4},
			Velocity:          r3.Vec{X: -x / 8 * float64(p.LaunchSpeed)},
			RemainingLifetime: float64(p.Lifetime),
			StartLifetime:     float64(p.Lifetime),
		}
		traces[i].Points = []r3.Vec{particles[i].Position}
	}

	buf := pool.NewBuffer(pool.World, geom.Identity(), particles...)
	a, err := attractor.New("preview", cfg, attractor.Fixed(destination), buf)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := a.Attract(traceDT, traceDT); err != nil {
			return nil, err
		}

		ps := buf.Particles()
		live := 0
		for i := range ps {
			if !ps[i].Alive() {
				// capture zeroes the lifetime; expiry below leaves it negative
				traces[i].Captured = ps[i].RemainingLifetime == 0
				continue
			}
			traces[i].Points = append(traces[i].Points, ps[i].Position)
			ps[i].Position = r3.Add(ps[i].Position, r3.Scale(traceDT, ps[i].Velocity))
			ps[i].RemainingLifetime -= traceDT
			if ps[i].RemainingLifetime <= 0 {
				ps[i].RemainingLifetime = -1 // expired, not captured
				continue
			}
			live++
		}
		if err := buf.WriteBack(ps, len(ps)); err != nil {
			return nil, err
		}
		if live == 0 {
			return traces, nil
		}
	}
}
