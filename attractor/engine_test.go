package attractor

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/geom"
	"github.com/pthm-cable/attract/pool"
)

const frame = 1.0 / 60.0

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vecNear(a, b r3.Vec, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func mustNew(t *testing.T, cfg Config, anchor Anchor, pools ...pool.Pool) *Attractor {
	t.Helper()
	a, err := New("test", cfg, anchor, pools...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestAttractDelayWindowLeavesParticleUntouched(t *testing.T) {
	p := pool.Particle{
		Position:          r3.Vec{X: -5},
		Velocity:          r3.Vec{Y: 2},
		RemainingLifetime: 1.5,
		StartLifetime:     2.0,
	}
	buf := pool.NewBuffer(pool.World, geom.Identity(), p)

	cfg := DefaultConfig()
	cfg.DelayRate = 0.5
	a := mustNew(t, cfg, Fixed{X: 10}, buf)

	stats, err := a.Attract(frame, frame)
	if err != nil {
		t.Fatalf("Attract: %v", err)
	}
	if stats.Delayed != 1 || stats.Moved != 0 {
		t.Errorf("expected 1 delayed particle, got %+v", stats)
	}

	got := buf.Particles()[0]
	if got != p {
		t.Errorf("delayed particle changed: %+v -> %+v", p, got)
	}
}

func TestAttractLinearScenario(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
		Position:          r3.Vec{},
		Velocity:          r3.Vec{X: 4},
		RemainingLifetime: 0.4,
		StartLifetime:     2.0,
	})

	cfg := DefaultConfig()
	cfg.DelayRate = 0.5
	cfg.MaxSpeed = 1
	cfg.Movement = Linear
	a := mustNew(t, cfg, Fixed{X: 10}, buf)

	// elapsed = 1.6 - 1.0 = 0.6, duration = 1.0, speed = 1*60/60 = 1, step = 1/1.0
	stats, err := a.Attract(frame, frame)
	if err != nil {
		t.Fatalf("Attract: %v", err)
	}
	if stats.Moved != 1 {
		t.Fatalf("expected 1 moved particle, got %+v", stats)
	}

	got := buf.Particles()[0]
	if !vecNear(got.Position, r3.Vec{X: 1}, 1e-9) {
		t.Errorf("position = %v, want (1,0,0)", got.Position)
	}
	if !vecNear(got.Velocity, r3.Vec{X: 2}, 1e-12) {
		t.Errorf("velocity = %v, want halved (2,0,0)", got.Velocity)
	}
}

func TestAttractLinearStepScalesWithDuration(t *testing.T) {
	// Short lifetime: duration 0.5, so the step doubles
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
		RemainingLifetime: 0.25,
		StartLifetime:     0.5,
	})
	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, buf)

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}
	got := buf.Particles()[0].Position
	if !vecNear(got, r3.Vec{X: 2}, 1e-9) {
		t.Errorf("position = %v, want (2,0,0)", got)
	}
}

func TestAttractLinearNeverOvershoots(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
		Position:          r3.Vec{X: 8.5},
		RemainingLifetime: 0.5,
		StartLifetime:     1,
	})
	cfg := DefaultConfig()
	cfg.DestinationRadius = 0.1
	cfg.MaxSpeed = 100
	a := mustNew(t, cfg, Fixed{X: 10}, buf)

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}
	got := buf.Particles()[0].Position
	if !vecNear(got, r3.Vec{X: 10}, 1e-9) {
		t.Errorf("expected clamp at target, got %v", got)
	}
}

func TestAttractSmoothRetargets(t *testing.T) {
	tests := []struct {
		name     string
		maxSpeed float64
		want     r3.Vec
	}{
		// elapsed/duration = 0.5, so the re-targeted point is (5,0,0)
		{"small step", 1, r3.Vec{X: 1}},
		{"clamped to retarget", 100, r3.Vec{X: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
				RemainingLifetime: 1,
				StartLifetime:     2,
			})
			cfg := DefaultConfig()
			cfg.Movement = Smooth
			cfg.MaxSpeed = tt.maxSpeed
			a := mustNew(t, cfg, Fixed{X: 10}, buf)

			if _, err := a.Attract(frame, frame); err != nil {
				t.Fatal(err)
			}
			got := buf.Particles()[0].Position
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("position = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttractSphereFollowsArc(t *testing.T) {
	start := r3.Vec{X: 4}
	target := r3.Vec{Y: 4}
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
		Position:          start,
		RemainingLifetime: 1,
		StartLifetime:     2,
	})
	cfg := DefaultConfig()
	cfg.Movement = Sphere
	cfg.MaxSpeed = 100
	cfg.DestinationRadius = 0.1
	a := mustNew(t, cfg, Fixed(target), buf)

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}

	// Big step lands on the arc midpoint: radius 4 at 45 degrees
	got := buf.Particles()[0].Position
	want := r3.Vec{X: 4 * math.Sqrt2 / 2, Y: 4 * math.Sqrt2 / 2}
	if !vecNear(got, want, 1e-9) {
		t.Errorf("position = %v, want %v", got, want)
	}
	if !near(r3.Norm(got), 4, 1e-9) {
		t.Errorf("sphere profile should keep radius 4, got %v", r3.Norm(got))
	}
}

func TestAttractSphereStepBounded(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
		Position:          r3.Vec{X: 4},
		RemainingLifetime: 1,
		StartLifetime:     2,
	})
	cfg := DefaultConfig()
	cfg.Movement = Sphere
	cfg.MaxSpeed = 0.5
	a := mustNew(t, cfg, Fixed{Y: 4}, buf)

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}
	moved := geom.Distance(buf.Particles()[0].Position, r3.Vec{X: 4})
	if moved > 0.5+1e-9 {
		t.Errorf("moved %v, more than the 0.5 step", moved)
	}
}

func TestAttractCaptureTakesPrecedence(t *testing.T) {
	p := pool.Particle{
		Position:          r3.Vec{X: 9.5},
		Velocity:          r3.Vec{X: 1},
		RemainingLifetime: 0.2,
		StartLifetime:     1,
	}
	buf := pool.NewBuffer(pool.World, geom.Identity(), p)
	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, buf)

	events := 0
	a.OnAttracted(func() { events++ })

	stats, err := a.Attract(frame, frame)
	if err != nil {
		t.Fatal(err)
	}
	if events != 1 || stats.Captured != 1 {
		t.Errorf("expected exactly one capture, events=%d stats=%+v", events, stats)
	}

	got := buf.Particles()[0]
	if got.RemainingLifetime != 0 {
		t.Errorf("captured particle lifetime = %v, want 0", got.RemainingLifetime)
	}
	if got.Position != p.Position || got.Velocity != p.Velocity {
		t.Errorf("captured particle must not also be moved: %+v", got)
	}
}

func TestAttractDeadParticleNotRecaptured(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
		Position:          r3.Vec{X: 10},
		RemainingLifetime: 0,
		StartLifetime:     1,
	})
	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, buf)
	events := 0
	a.OnAttracted(func() { events++ })

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}
	if events != 0 {
		t.Errorf("particle with no lifetime left must not fire capture, got %d", events)
	}
}

func TestAttractThreeParticleScenario(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(),
		pool.Particle{Position: r3.Vec{X: 0}, Velocity: r3.Vec{Y: 1}, RemainingLifetime: 0.5, StartLifetime: 1},
		pool.Particle{Position: r3.Vec{X: 9.8}, RemainingLifetime: 0.5, StartLifetime: 1},
		pool.Particle{Position: r3.Vec{Z: -3}, Velocity: r3.Vec{Z: 6}, RemainingLifetime: 0.5, StartLifetime: 1},
	)
	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, buf)

	events := 0
	a.OnAttracted(func() { events++ })

	stats, err := a.Attract(frame, frame)
	if err != nil {
		t.Fatal(err)
	}

	if events != 1 {
		t.Errorf("expected 1 capture event, got %d", events)
	}
	if buf.Writes() != 1 {
		t.Errorf("expected a single write-back, got %d", buf.Writes())
	}
	if buf.Count() != 3 {
		t.Errorf("write-back must keep all 3 particles, got %d", buf.Count())
	}

	got := buf.Particles()
	zeroed := 0
	for _, p := range got {
		if p.RemainingLifetime == 0 {
			zeroed++
		}
	}
	if zeroed != 1 {
		t.Errorf("expected exactly one zeroed lifetime, got %d", zeroed)
	}
	if stats.Moved != 2 || stats.Captured != 1 || stats.Particles != 3 || stats.Pools != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if got[0].Position == (r3.Vec{}) || got[2].Position == (r3.Vec{Z: -3}) {
		t.Errorf("non-captured particles should have moved: %+v", got)
	}
}

func TestAttractHalvesVelocity(t *testing.T) {
	vels := []r3.Vec{{X: 3}, {X: -1, Y: 2, Z: 5}, {}}
	buf := pool.NewBuffer(pool.World, geom.Identity())
	for _, v := range vels {
		buf.Add(pool.Particle{Position: r3.Vec{X: -20}, Velocity: v, RemainingLifetime: 0.5, StartLifetime: 1})
	}
	cfg := DefaultConfig()
	for _, m := range []Movement{Linear, Smooth, Sphere} {
		cfg.Movement = m
		a := mustNew(t, cfg, Fixed{X: 10}, buf)
		before := buf.Particles()
		if _, err := a.Attract(frame, frame); err != nil {
			t.Fatal(err)
		}
		for i, p := range buf.Particles() {
			if !near(r3.Norm(p.Velocity), r3.Norm(before[i].Velocity)/2, 1e-12) {
				t.Errorf("%v: velocity %v not half of %v", m, p.Velocity, before[i].Velocity)
			}
		}
	}
}

func TestAttractUpdateModeTimeSource(t *testing.T) {
	tests := []struct {
		name       string
		mode       UpdateMode
		dt         float64
		unscaledDt float64
		want       r3.Vec
	}{
		{"normal uses scaled delta", Normal, frame * 2, frame, r3.Vec{X: 2}},
		{"normal paused", Normal, 0, frame, r3.Vec{}},
		{"unscaled ignores scale", UnscaledTime, 0, frame, r3.Vec{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{
				RemainingLifetime: 0.5,
				StartLifetime:     1,
			})
			cfg := DefaultConfig()
			cfg.UpdateMode = tt.mode
			a := mustNew(t, cfg, Fixed{X: 10}, buf)
			if _, err := a.Attract(tt.dt, tt.unscaledDt); err != nil {
				t.Fatal(err)
			}
			got := buf.Particles()[0].Position
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("position = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttractLocalSpacePool(t *testing.T) {
	tr := geom.Transform{
		Position: r3.Vec{X: 100},
		Axis:     r3.Vec{Z: 1},
		Angle:    math.Pi / 2,
		Scale:    r3.Vec{X: 1, Y: 1, Z: 1},
	}
	local := pool.NewBuffer(pool.Local, tr, pool.Particle{
		RemainingLifetime: 0.5,
		StartLifetime:     1,
	})

	// World (100,10,0) lies 10 units along the rotated pool's local +X
	anchor := Fixed{X: 100, Y: 10}
	a := mustNew(t, DefaultConfig(), anchor, local)

	dst := a.Destination(local)
	if !vecNear(dst, r3.Vec{X: 10}, 1e-9) {
		t.Fatalf("destination = %v, want (10,0,0) in local space", dst)
	}

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}
	got := local.Particles()[0].Position
	if !vecNear(got, r3.Vec{X: 1}, 1e-9) {
		t.Errorf("local particle moved to %v, want (1,0,0)", got)
	}
}

func TestDestinationFor(t *testing.T) {
	tr := geom.At(r3.Vec{X: 1, Y: 2, Z: 3})
	anchor := r3.Vec{X: 5, Y: 5, Z: 5}

	world := pool.NewBuffer(pool.World, tr)
	if got := DestinationFor(world, anchor); got != anchor {
		t.Errorf("world-space destination = %v, want raw anchor %v", got, anchor)
	}

	local := pool.NewBuffer(pool.Local, tr)
	want := local.WorldToLocal(anchor)
	if got := DestinationFor(local, anchor); got != want {
		t.Errorf("local-space destination = %v, want %v", got, want)
	}
}

func TestAttractSkipsNilAndEmptyPools(t *testing.T) {
	empty := pool.NewBuffer(pool.World, geom.Identity())
	full := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})

	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, nil, empty, full)
	stats, err := a.Attract(frame, frame)
	if err != nil {
		t.Fatalf("Attract: %v", err)
	}
	if empty.Writes() != 0 {
		t.Error("empty pool should not be written back")
	}
	if full.Writes() != 1 {
		t.Error("non-empty pool should be written back once")
	}
	if stats.Pools != 1 {
		t.Errorf("expected 1 processed pool, got %d", stats.Pools)
	}
}

func TestAttractSkipsTypedNilPools(t *testing.T) {
	var missing *pool.Emitter
	var missingBuf *pool.Buffer
	full := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})

	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, missingBuf)
	a.AddPool(missing)
	a.AddPool(full)

	stats, err := a.Attract(frame, frame)
	if err != nil {
		t.Fatalf("Attract: %v", err)
	}
	if stats.Pools != 1 {
		t.Errorf("expected 1 processed pool, got %d", stats.Pools)
	}
	for i, p := range a.Pools()[:2] {
		if p != nil {
			t.Errorf("pool %d: nil pointer should be stored as a nil entry", i)
		}
	}

	a.SetPools(missing, full)
	if a.Pools()[0] != nil {
		t.Error("SetPools should store a nil pointer as a nil entry")
	}
	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatalf("Attract after SetPools: %v", err)
	}
	if full.Writes() != 2 {
		t.Errorf("expected 2 writes to the live pool, got %d", full.Writes())
	}
}

func TestAttractPoolsDoNotShareScratch(t *testing.T) {
	first := pool.NewBuffer(pool.World, geom.Identity(),
		pool.Particle{Position: r3.Vec{X: 1}, RemainingLifetime: 0.5, StartLifetime: 1})
	second := pool.NewBuffer(pool.World, geom.Identity(),
		pool.Particle{Position: r3.Vec{X: 50}, RemainingLifetime: 0.5, StartLifetime: 1})

	a := mustNew(t, DefaultConfig(), Fixed{X: 100}, first, second)
	for i := 0; i < 2; i++ {
		if _, err := a.Attract(frame, frame); err != nil {
			t.Fatalf("Attract: %v", err)
		}
	}

	if x := first.Particles()[0].Position.X; x > 10 {
		t.Errorf("first pool picked up the second pool's particle, x = %v", x)
	}
	if x := second.Particles()[0].Position.X; x < 50 {
		t.Errorf("second pool particle moved backwards, x = %v", x)
	}
}

// failingPool fails its snapshot.
type failingPool struct {
	*pool.Buffer
}

var errRead = errors.New("read failed")

func (f failingPool) Snapshot(dst []pool.Particle) ([]pool.Particle, error) {
	return dst[:0], errRead
}

func TestAttractAbortsOnSnapshotError(t *testing.T) {
	first := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})
	bad := failingPool{pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})}
	last := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})

	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, first, bad, last)
	stats, err := a.Attract(frame, frame)
	if !errors.Is(err, errRead) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if first.Writes() != 1 {
		t.Error("pool before the failure should keep its committed update")
	}
	if last.Writes() != 0 {
		t.Error("pools after the failure must not be touched this tick")
	}
	if stats.Pools != 1 {
		t.Errorf("expected 1 committed pool, got %d", stats.Pools)
	}

	// The next tick simply retries
	a.SetPools(first, last)
	if _, err := a.Attract(frame, frame); err != nil {
		t.Errorf("retry tick failed: %v", err)
	}
	if last.Writes() != 1 {
		t.Error("expected retry to reach the last pool")
	}
}

func TestAttractMovingAnchor(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})
	anchor := &movingAnchor{pos: r3.Vec{X: 10}}
	a := mustNew(t, DefaultConfig(), anchor, buf)

	a.Attract(frame, frame)
	anchor.pos = r3.Vec{Y: 10}
	a.Attract(frame, frame)

	got := buf.Particles()[0].Position
	if !(got.Y > 0) {
		t.Errorf("expected particle to follow the moved anchor, got %v", got)
	}
}

type movingAnchor struct {
	pos r3.Vec
}

func (m *movingAnchor) Position() r3.Vec {
	return m.pos
}
