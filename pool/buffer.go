package pool

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/geom"
)

// Buffer is a slice-backed Pool for engines that keep particles in a plain
// array. It counts commits so callers can check write-back behavior.
type Buffer struct {
	particles []Particle
	space     Space
	transform geom.Transform
	writes    int
}

// NewBuffer creates a buffer pool in the given space and transform.
func NewBuffer(space Space, transform geom.Transform, particles ...Particle) *Buffer {
	b := &Buffer{
		space:     space,
		transform: transform,
	}
	b.particles = append(b.particles, particles...)
	return b
}

// Add appends particles to the buffer.
func (b *Buffer) Add(particles ...Particle) {
	b.particles = append(b.particles, particles...)
}

// Particles returns a copy of the current particles.
func (b *Buffer) Particles() []Particle {
	out := make([]Particle, len(b.particles))
	copy(out, b.particles)
	return out
}

// Writes returns how many times WriteBack has committed.
func (b *Buffer) Writes() int {
	return b.writes
}

// SetTransform moves the buffer's frame.
func (b *Buffer) SetTransform(t geom.Transform) {
	b.transform = t
}

func (b *Buffer) Count() int {
	return len(b.particles)
}

func (b *Buffer) Snapshot(dst []Particle) ([]Particle, error) {
	return append(dst[:0], b.particles...), nil
}

// WriteBack replaces the buffer with particles[:count]. A count lower than
// the current size drops the trailing particles.
func (b *Buffer) WriteBack(particles []Particle, count int) error {
	if count < 0 || count > len(particles) || count > len(b.particles) {
		return fmt.Errorf("buffer write-back of %d (have %d, pool %d): %w",
			count, len(particles), len(b.particles), ErrCountMismatch)
	}
	b.particles = append(b.particles[:0], particles[:count]...)
	b.writes++
	return nil
}

func (b *Buffer) SimulationSpace() Space {
	return b.space
}

func (b *Buffer) WorldToLocal(p r3.Vec) r3.Vec {
	return b.transform.InverseTransformPoint(p)
}

func (b *Buffer) Position() r3.Vec {
	return b.transform.Position
}
