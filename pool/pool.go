// Package pool defines particle pools: ordered collections of simulated
// particles that are borrowed as a snapshot, mutated, and committed back.
package pool

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrCountMismatch is returned when a write-back does not match the pool.
var ErrCountMismatch = errors.New("pool: particle count mismatch")

// Space is the coordinate frame particle positions are stored in.
type Space uint8

const (
	World Space = iota // absolute world coordinates
	Local              // relative to the pool's own transform
)

func (s Space) String() string {
	switch s {
	case World:
		return "world"
	case Local:
		return "local"
	}
	return fmt.Sprintf("space(%d)", uint8(s))
}

// ParseSpace parses "world" or "local".
func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "world", "":
		return World, nil
	case "local":
		return Local, nil
	}
	return World, fmt.Errorf("unknown simulation space %q", s)
}

// Particle is one simulated particle as seen through a snapshot.
type Particle struct {
	Position          r3.Vec
	Velocity          r3.Vec
	RemainingLifetime float64
	StartLifetime     float64
}

// Alive reports whether the particle still has lifetime left.
func (p Particle) Alive() bool {
	return p.RemainingLifetime > 0
}

// Age returns how long the particle has been alive.
func (p Particle) Age() float64 {
	return p.StartLifetime - p.RemainingLifetime
}

// Pool is an index-addressable particle collection owned by a simulation
// engine. Index order is stable between a Snapshot and the matching
// WriteBack only; it carries no identity across ticks.
type Pool interface {
	// Count returns the number of particles currently in the pool.
	Count() int
	// Snapshot appends a copy of every particle to dst[:0] and returns it.
	Snapshot(dst []Particle) ([]Particle, error)
	// WriteBack commits the first count particles in one step. Callers
	// reuse the slice for the next pool and tick, so implementations must
	// copy what they keep rather than retain particles.
	WriteBack(particles []Particle, count int) error
	// SimulationSpace reports which frame particle positions are stored in.
	SimulationSpace() Space
	// WorldToLocal maps a world-space point into the pool's local frame.
	WorldToLocal(p r3.Vec) r3.Vec
	// Position is the pool's own world-space position.
	Position() r3.Vec
}
