package attractor

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/pool"
)

// DestinationFor returns anchorWorld expressed in p's simulation space.
// World-space pools get the anchor unchanged; local-space pools get it
// transformed into the pool's own frame. Nothing is cached because both the
// anchor and the pool's transform may move between ticks.
func DestinationFor(p pool.Pool, anchorWorld r3.Vec) r3.Vec {
	if p.SimulationSpace() == pool.Local {
		return p.WorldToLocal(anchorWorld)
	}
	return anchorWorld
}

// Destination returns the attractor's current destination in p's space.
func (a *Attractor) Destination(p pool.Pool) r3.Vec {
	return DestinationFor(p, a.anchor.Position())
}
