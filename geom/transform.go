package geom

import "gonum.org/v1/gonum/spatial/r3"

// Transform places a local frame in world space: scale, then rotate about
// Axis by Angle radians, then translate by Position.
type Transform struct {
	Position r3.Vec
	Axis     r3.Vec
	Angle    float64
	Scale    r3.Vec
}

// Identity returns a transform with unit scale and no rotation at the origin.
func Identity() Transform {
	return Transform{Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
}

// At returns an unrotated, unscaled transform positioned at p.
func At(p r3.Vec) Transform {
	t := Identity()
	t.Position = p
	return t
}

// TransformPoint maps a point from local space to world space.
func (t Transform) TransformPoint(local r3.Vec) r3.Vec {
	p := mulElem(local, t.Scale)
	if t.rotates() {
		p = r3.NewRotation(t.Angle, t.Axis).Rotate(p)
	}
	return r3.Add(p, t.Position)
}

// InverseTransformPoint maps a point from world space to local space.
// Scale components of zero collapse that axis to zero.
func (t Transform) InverseTransformPoint(world r3.Vec) r3.Vec {
	p := r3.Sub(world, t.Position)
	if t.rotates() {
		p = r3.NewRotation(-t.Angle, t.Axis).Rotate(p)
	}
	return divElem(p, t.Scale)
}

// TransformDirection rotates a local direction into world space, ignoring
// position and scale.
func (t Transform) TransformDirection(local r3.Vec) r3.Vec {
	if !t.rotates() {
		return local
	}
	return r3.NewRotation(t.Angle, t.Axis).Rotate(local)
}

func (t Transform) rotates() bool {
	return t.Angle != 0 && r3.Norm2(t.Axis) > epsilon
}

func mulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

func divElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: safeDiv(a.X, b.X), Y: safeDiv(a.Y, b.Y), Z: safeDiv(a.Z, b.Z)}
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
