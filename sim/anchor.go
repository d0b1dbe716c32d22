package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/scheduler"
)

// OrbitAnchor is an attractor anchor that circles Center in the XY plane,
// driven by the scene clock's scaled time. A zero Radius keeps it fixed.
type OrbitAnchor struct {
	Center r3.Vec
	Radius float64
	Speed  float64 // radians per second of scaled time

	clock *scheduler.Clock
}

// Position returns the anchor's current world position.
func (o *OrbitAnchor) Position() r3.Vec {
	if o.Radius == 0 || o.clock == nil {
		return o.Center
	}
	angle := o.Speed * o.clock.Time
	return r3.Add(o.Center, r3.Vec{
		X: o.Radius * math.Cos(angle),
		Y: o.Radius * math.Sin(angle),
	})
}
