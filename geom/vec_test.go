package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func vecNear(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name     string
		current  r3.Vec
		target   r3.Vec
		maxDelta float64
		want     r3.Vec
	}{
		{"partial step", r3.Vec{}, r3.Vec{X: 10}, 2, r3.Vec{X: 2}},
		{"exact reach", r3.Vec{}, r3.Vec{Y: 3}, 3, r3.Vec{Y: 3}},
		{"clamped at target", r3.Vec{X: 1}, r3.Vec{X: 2}, 5, r3.Vec{X: 2}},
		{"already there", r3.Vec{Z: 4}, r3.Vec{Z: 4}, 1, r3.Vec{Z: 4}},
		{"diagonal", r3.Vec{}, r3.Vec{X: 3, Y: 4}, 2.5, r3.Vec{X: 1.5, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.current, tt.target, tt.maxDelta)
			if !vecNear(got, tt.want, tol) {
				t.Errorf("MoveTowards(%v, %v, %v) = %v, want %v", tt.current, tt.target, tt.maxDelta, got, tt.want)
			}
		})
	}
}

func TestMoveTowardsNeverOvershoots(t *testing.T) {
	target := r3.Vec{X: 1, Y: -2, Z: 0.5}
	p := r3.Vec{X: -7, Y: 3, Z: 9}
	for i := 0; i < 50; i++ {
		before := Distance(p, target)
		p = MoveTowards(p, target, 0.7)
		after := Distance(p, target)
		if after > before+tol {
			t.Fatalf("step %d moved away from target: %v -> %v", i, before, after)
		}
		if before-after > 0.7+tol {
			t.Fatalf("step %d moved %v, more than max delta", i, before-after)
		}
	}
	if !vecNear(p, target, tol) {
		t.Errorf("expected to settle on target, got %v", p)
	}
}

func TestLerpClamps(t *testing.T) {
	a := r3.Vec{X: 0}
	b := r3.Vec{X: 10}

	if got := Lerp(a, b, 0.25); !vecNear(got, r3.Vec{X: 2.5}, tol) {
		t.Errorf("Lerp 0.25 = %v", got)
	}
	if got := Lerp(a, b, -1); !vecNear(got, a, tol) {
		t.Errorf("Lerp below 0 should clamp to a, got %v", got)
	}
	if got := Lerp(a, b, 3); !vecNear(got, b, tol) {
		t.Errorf("Lerp above 1 should clamp to b, got %v", got)
	}
}

func TestSlerpEndpoints(t *testing.T) {
	a := r3.Vec{X: 2}
	b := r3.Vec{Y: 4}

	if got := Slerp(a, b, 0); !vecNear(got, a, 1e-9) {
		t.Errorf("Slerp t=0 = %v, want %v", got, a)
	}
	if got := Slerp(a, b, 1); !vecNear(got, b, 1e-9) {
		t.Errorf("Slerp t=1 = %v, want %v", got, b)
	}
}

func TestSlerpConstantAngularVelocity(t *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{Y: 3}

	got := Slerp(a, b, 0.5)

	// Halfway: 45 degrees, magnitude halfway between 1 and 3
	want := r3.Scale(2, r3.Vec{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2})
	if !vecNear(got, want, 1e-9) {
		t.Errorf("Slerp halfway = %v, want %v", got, want)
	}

	// Arc should bulge outside the straight chord
	chord := Lerp(a, b, 0.5)
	if r3.Norm(got) <= r3.Norm(chord) {
		t.Errorf("expected slerp point %v to lie outside chord point %v", got, chord)
	}
}

func TestSlerpAntiparallel(t *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{X: -1}

	got := Slerp(a, b, 0.5)
	if math.Abs(r3.Norm(got)-1) > 1e-9 {
		t.Errorf("expected unit length at midpoint, got %v", r3.Norm(got))
	}
	if math.Abs(got.X) > 1e-9 {
		t.Errorf("expected midpoint perpendicular to x axis, got %v", got)
	}
}

func TestSlerpZeroVectorFallsBackToLerp(t *testing.T) {
	a := r3.Vec{}
	b := r3.Vec{Z: 8}
	if got := Slerp(a, b, 0.25); !vecNear(got, r3.Vec{Z: 2}, tol) {
		t.Errorf("Slerp from origin = %v, want lerp result", got)
	}
}
