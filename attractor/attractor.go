// Package attractor pulls particles in one or more pools toward a moving
// world-space anchor, capturing (killing) particles that come within the
// destination radius.
//
// An Attractor is driven once per update by whatever owns the update loop,
// usually a scheduler.Registry. Each pool is borrowed as a snapshot,
// mutated in an owned buffer, and committed back in a single write.
package attractor

import (
	"errors"
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/pool"
)

// ErrDisposed is returned when starting an attractor after Dispose.
var ErrDisposed = errors.New("attractor: disposed")

// Anchor supplies the attractor's world-space position. It is read once
// per tick, so anchors may move freely between ticks.
type Anchor interface {
	Position() r3.Vec
}

// Fixed is an Anchor that never moves.
type Fixed r3.Vec

// Position returns the fixed point.
func (f Fixed) Position() r3.Vec {
	return r3.Vec(f)
}

// Registrar owns the set of attractors that receive periodic ticks.
// Register and Unregister must be idempotent.
type Registrar interface {
	Register(a *Attractor)
	Unregister(a *Attractor)
}

// Attractor is one attraction instance: its configuration, anchor, target
// pools and capture handlers.
type Attractor struct {
	name   string
	cfg    Config
	anchor Anchor
	pools  []pool.Pool

	handlers []func()

	registrar Registrar
	started   bool
	disposed  bool

	// Reused between ticks to avoid reallocating snapshots
	scratch []pool.Particle
}

// New creates a stopped attractor. A nil anchor is treated as the origin.
func New(name string, cfg Config, anchor Anchor, pools ...pool.Pool) (*Attractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("attractor %q: %w", name, err)
	}
	if anchor == nil {
		anchor = Fixed{}
	}
	return &Attractor{
		name:   name,
		cfg:    cfg,
		anchor: anchor,
		pools:  normalizePools(nil, pools),
	}, nil
}

// Name returns the attractor's name.
func (a *Attractor) Name() string {
	return a.name
}

// Config returns a copy of the current configuration.
func (a *Attractor) Config() Config {
	return a.cfg
}

// SetConfig replaces the whole configuration after validating it.
func (a *Attractor) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// SetDestinationRadius sets the capture distance.
func (a *Attractor) SetDestinationRadius(v float64) error {
	if err := validateRadius(v); err != nil {
		return err
	}
	a.cfg.DestinationRadius = v
	return nil
}

// SetDelayRate sets the fraction of lifetime before attraction begins.
func (a *Attractor) SetDelayRate(v float64) error {
	if err := validateDelayRate(v); err != nil {
		return err
	}
	a.cfg.DelayRate = v
	return nil
}

// SetMaxSpeed sets the speed at the 60 Hz baseline.
func (a *Attractor) SetMaxSpeed(v float64) error {
	if err := validateMaxSpeed(v); err != nil {
		return err
	}
	a.cfg.MaxSpeed = v
	return nil
}

// SetMovement selects the movement profile.
func (a *Attractor) SetMovement(m Movement) error {
	if m > Sphere {
		return fmt.Errorf("movement %d: %w", m, ErrInvalidConfig)
	}
	a.cfg.Movement = m
	return nil
}

// SetUpdateMode selects the time source.
func (a *Attractor) SetUpdateMode(u UpdateMode) error {
	if u > UnscaledTime {
		return fmt.Errorf("update mode %d: %w", u, ErrInvalidConfig)
	}
	a.cfg.UpdateMode = u
	return nil
}

// Anchor returns the attractor's anchor.
func (a *Attractor) Anchor() Anchor {
	return a.anchor
}

// SetAnchor replaces the anchor. A nil anchor is treated as the origin.
func (a *Attractor) SetAnchor(anchor Anchor) {
	if anchor == nil {
		anchor = Fixed{}
	}
	a.anchor = anchor
}

// Pools returns a copy of the target pool list.
func (a *Attractor) Pools() []pool.Pool {
	return append([]pool.Pool(nil), a.pools...)
}

// SetPools replaces the target pool list. Nil entries, including nil
// pointers wrapped in the Pool interface, are allowed and skipped.
func (a *Attractor) SetPools(pools ...pool.Pool) {
	a.pools = normalizePools(a.pools[:0:0], pools)
}

// AddPool appends a target pool. A nil pool is kept as a skipped entry.
func (a *Attractor) AddPool(p pool.Pool) {
	a.pools = normalizePools(a.pools, []pool.Pool{p})
}

// normalizePools appends pools to dst, turning typed nils such as a nil
// *pool.Emitter into plain nil entries so Attract can skip them.
func normalizePools(dst, pools []pool.Pool) []pool.Pool {
	for _, p := range pools {
		if isNilPool(p) {
			p = nil
		}
		dst = append(dst, p)
	}
	return dst
}

func isNilPool(p pool.Pool) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// OnAttracted subscribes h to capture notifications. Handlers run
// synchronously, once per captured particle, in subscription order.
func (a *Attractor) OnAttracted(h func()) {
	if h == nil {
		return
	}
	a.handlers = append(a.handlers, h)
}

func (a *Attractor) notifyAttracted() {
	for _, h := range a.handlers {
		h()
	}
}

// Start registers the attractor with r so it receives ticks.
func (a *Attractor) Start(r Registrar) error {
	if a.disposed {
		return fmt.Errorf("start %q: %w", a.name, ErrDisposed)
	}
	if r == nil {
		return fmt.Errorf("start %q: nil registrar", a.name)
	}
	if a.started && a.registrar != r {
		a.registrar.Unregister(a)
	}
	a.registrar = r
	a.started = true
	r.Register(a)
	return nil
}

// Stop unregisters the attractor. A tick already in progress still runs
// to completion; Stop only prevents future ticks.
func (a *Attractor) Stop() {
	if !a.started {
		return
	}
	a.registrar.Unregister(a)
	a.started = false
}

// Dispose stops the attractor and releases its pools. Attract on a
// disposed attractor is a no-op.
func (a *Attractor) Dispose() {
	a.Stop()
	a.pools = nil
	a.scratch = nil
	a.registrar = nil
	a.disposed = true
}

// Started reports whether the attractor is registered for ticks.
func (a *Attractor) Started() bool {
	return a.started
}

// Disposed reports whether Dispose has been called.
func (a *Attractor) Disposed() bool {
	return a.disposed
}
