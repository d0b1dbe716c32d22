// Package components defines ECS components for simulated particles.
package components

// Position is a particle's position in its pool's simulation space.
// Field layout matches r3.Vec so the two convert directly.
type Position struct {
	X, Y, Z float64
}

// Velocity is a particle's velocity in its pool's simulation space.
type Velocity struct {
	X, Y, Z float64
}

// Lifetime tracks how long a particle has left to live.
// Remaining never exceeds Start; Remaining <= 0 marks the particle for removal.
type Lifetime struct {
	Remaining float64
	Start     float64
}
