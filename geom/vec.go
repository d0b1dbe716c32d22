// Package geom provides the 3D vector helpers used to steer particles.
// Vectors are gonum r3.Vec values; all functions are pure.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon below which lengths are treated as zero.
const epsilon = 1e-9

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// MoveTowards moves current toward target by at most maxDelta.
// If target is within maxDelta, target is returned exactly so the step never overshoots.
func MoveTowards(current, target r3.Vec, maxDelta float64) r3.Vec {
	d := r3.Sub(target, current)
	dist := r3.Norm(d)
	if dist <= maxDelta || dist < epsilon {
		return target
	}
	return r3.Add(current, r3.Scale(maxDelta/dist, d))
}

// Lerp linearly interpolates between a and b. t is clamped to [0, 1].
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	t = clamp01(t)
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Slerp spherically interpolates between a and b treated as directions.
// The direction rotates at constant angular velocity while the length is
// interpolated linearly. t is clamped to [0, 1].
func Slerp(a, b r3.Vec, t float64) r3.Vec {
	t = clamp01(t)

	la := r3.Norm(a)
	lb := r3.Norm(b)
	if la < epsilon || lb < epsilon {
		return Lerp(a, b, t)
	}

	ua := r3.Scale(1/la, a)
	ub := r3.Scale(1/lb, b)
	dot := clamp(r3.Dot(ua, ub), -1, 1)
	mag := la + (lb-la)*t

	// Nearly parallel: the chord and the arc coincide
	if dot > 1-epsilon {
		return r3.Scale(mag, r3.Unit(Lerp(ua, ub, t)))
	}

	theta := math.Acos(dot) * t

	// Orthonormal basis vector in the plane of ua/ub, perpendicular to ua
	var perp r3.Vec
	if dot < -1+epsilon {
		perp = anyPerpendicular(ua)
	} else {
		perp = r3.Unit(r3.Sub(ub, r3.Scale(dot, ua)))
	}

	dir := r3.Add(r3.Scale(math.Cos(theta), ua), r3.Scale(math.Sin(theta), perp))
	return r3.Scale(mag, dir)
}

// anyPerpendicular returns a unit vector perpendicular to the unit vector u.
func anyPerpendicular(u r3.Vec) r3.Vec {
	axis := r3.Vec{X: 1}
	if math.Abs(u.X) > 0.9 {
		axis = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(u, axis))
}

func clamp01(t float64) float64 {
	return clamp(t, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
