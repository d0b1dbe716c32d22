package pool

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/components"
	"github.com/pthm-cable/attract/geom"
)

// EmitterSettings controls how an Emitter spawns particles.
type EmitterSettings struct {
	Rate         float64 // particles per second
	LifetimeMin  float64 // seconds
	LifetimeMax  float64 // seconds
	SpeedMin     float64 // units per second
	SpeedMax     float64 // units per second
	Spread       float64 // cone half-angle around local +Y, radians
	MaxParticles int     // 0 = unlimited
}

// Validate checks that settings can produce particles.
func (s EmitterSettings) Validate() error {
	if s.Rate < 0 {
		return fmt.Errorf("emitter rate %v must be >= 0", s.Rate)
	}
	if s.LifetimeMin <= 0 || s.LifetimeMax < s.LifetimeMin {
		return fmt.Errorf("emitter lifetime range [%v, %v] invalid", s.LifetimeMin, s.LifetimeMax)
	}
	if s.SpeedMin < 0 || s.SpeedMax < s.SpeedMin {
		return fmt.Errorf("emitter speed range [%v, %v] invalid", s.SpeedMin, s.SpeedMax)
	}
	if s.MaxParticles < 0 {
		return fmt.Errorf("emitter max particles %d must be >= 0", s.MaxParticles)
	}
	return nil
}

// Emitter is a particle pool whose particles live as entities in an ECS
// world. It spawns, ages, integrates and destroys its own particles; other
// code only sees it through the Pool interface.
type Emitter struct {
	name      string
	space     Space
	transform geom.Transform
	settings  EmitterSettings

	world    *ecs.World
	mapper   *ecs.Map3[components.Position, components.Velocity, components.Lifetime]
	entities []ecs.Entity
	dead     []ecs.Entity

	rng   *rand.Rand
	accum float64
}

// NewEmitter creates an emitter that stores its particles in world.
func NewEmitter(world *ecs.World, name string, space Space, transform geom.Transform, settings EmitterSettings, rng *rand.Rand) (*Emitter, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("emitter %q: %w", name, err)
	}
	return &Emitter{
		name:      name,
		space:     space,
		transform: transform,
		settings:  settings,
		world:     world,
		mapper:    ecs.NewMap3[components.Position, components.Velocity, components.Lifetime](world),
		rng:       rng,
	}, nil
}

// Name returns the emitter's configured name.
func (e *Emitter) Name() string {
	return e.name
}

// Transform returns the emitter's world placement.
func (e *Emitter) Transform() geom.Transform {
	return e.transform
}

// SetTransform moves the emitter. Locally simulated particles move with it.
func (e *Emitter) SetTransform(t geom.Transform) {
	e.transform = t
}

// Emit spawns particles for dt seconds of emission at the configured rate.
// Returns the number of particles spawned.
func (e *Emitter) Emit(dt float64) int {
	e.accum += e.settings.Rate * dt
	n := int(e.accum)
	e.accum -= float64(n)

	spawned := 0
	for i := 0; i < n; i++ {
		if e.settings.MaxParticles > 0 && len(e.entities) >= e.settings.MaxParticles {
			break
		}
		e.spawn()
		spawned++
	}
	return spawned
}

// Spawn creates a single particle directly, bypassing the rate accumulator.
func (e *Emitter) Spawn(pos, vel r3.Vec, lifetime float64) {
	p := components.Position(pos)
	v := components.Velocity(vel)
	life := components.Lifetime{Remaining: lifetime, Start: lifetime}
	e.entities = append(e.entities, e.mapper.NewEntity(&p, &v, &life))
}

func (e *Emitter) spawn() {
	s := e.settings

	// Direction within a cone around local +Y
	phi := e.rng.Float64() * 2 * math.Pi
	theta := e.rng.Float64() * s.Spread
	dir := r3.Vec{
		X: math.Sin(theta) * math.Cos(phi),
		Y: math.Cos(theta),
		Z: math.Sin(theta) * math.Sin(phi),
	}
	speed := s.SpeedMin + e.rng.Float64()*(s.SpeedMax-s.SpeedMin)
	lifetime := s.LifetimeMin + e.rng.Float64()*(s.LifetimeMax-s.LifetimeMin)

	pos := r3.Vec{}
	vel := r3.Scale(speed, dir)
	if e.space == World {
		pos = e.transform.Position
		vel = e.transform.TransformDirection(vel)
	}
	e.Spawn(pos, vel, lifetime)
}

// Step ages every particle by dt, integrates its velocity, and destroys
// particles whose lifetime ran out. expired counts particles that died of
// age during this step; reaped counts particles that already had no
// lifetime left, such as those zeroed through WriteBack.
func (e *Emitter) Step(dt float64) (expired, reaped int) {
	alive := e.entities[:0]
	e.dead = e.dead[:0]
	for _, entity := range e.entities {
		pos, vel, life := e.mapper.Get(entity)

		if life.Remaining <= 0 {
			reaped++
			e.dead = append(e.dead, entity)
			continue
		}

		life.Remaining -= dt
		if life.Remaining <= 0 {
			expired++
			e.dead = append(e.dead, entity)
			continue
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt
		alive = append(alive, entity)
	}
	e.entities = alive

	for _, entity := range e.dead {
		e.world.RemoveEntity(entity)
	}
	return expired, reaped
}

// Clear destroys every particle in the emitter.
func (e *Emitter) Clear() {
	for _, entity := range e.entities {
		e.world.RemoveEntity(entity)
	}
	e.entities = e.entities[:0]
	e.accum = 0
}

func (e *Emitter) Count() int {
	return len(e.entities)
}

func (e *Emitter) Snapshot(dst []Particle) ([]Particle, error) {
	dst = dst[:0]
	for _, entity := range e.entities {
		if !e.world.Alive(entity) {
			return dst, fmt.Errorf("emitter %q: snapshot of dead entity %v", e.name, entity)
		}
		pos, vel, life := e.mapper.Get(entity)
		dst = append(dst, Particle{
			Position:          r3.Vec(*pos),
			Velocity:          r3.Vec(*vel),
			RemainingLifetime: life.Remaining,
			StartLifetime:     life.Start,
		})
	}
	return dst, nil
}

// WriteBack commits particles[:count] onto the emitter's entities in index
// order. Entities past count have their lifetime zeroed and are destroyed on
// the next Step.
func (e *Emitter) WriteBack(particles []Particle, count int) error {
	if count < 0 || count > len(particles) || count > len(e.entities) {
		return fmt.Errorf("emitter %q write-back of %d (have %d, pool %d): %w",
			e.name, count, len(particles), len(e.entities), ErrCountMismatch)
	}
	for i, entity := range e.entities {
		pos, vel, life := e.mapper.Get(entity)
		if i >= count {
			life.Remaining = 0
			continue
		}
		p := particles[i]
		*pos = components.Position(p.Position)
		*vel = components.Velocity(p.Velocity)
		life.Remaining = math.Min(p.RemainingLifetime, life.Start)
	}
	return nil
}

func (e *Emitter) SimulationSpace() Space {
	return e.space
}

func (e *Emitter) WorldToLocal(p r3.Vec) r3.Vec {
	return e.transform.InverseTransformPoint(p)
}

func (e *Emitter) Position() r3.Vec {
	return e.transform.Position
}

// ToWorld maps a particle position in this emitter's space to world space.
func (e *Emitter) ToWorld(p r3.Vec) r3.Vec {
	if e.space == Local {
		return e.transform.TransformPoint(p)
	}
	return p
}
