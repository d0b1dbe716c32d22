package attractor

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/geom"
	"github.com/pthm-cable/attract/pool"
)

// recordingRegistrar records registration calls.
type recordingRegistrar struct {
	registered map[*Attractor]bool
	calls      []string
}

func newRecordingRegistrar() *recordingRegistrar {
	return &recordingRegistrar{registered: make(map[*Attractor]bool)}
}

func (r *recordingRegistrar) Register(a *Attractor) {
	r.registered[a] = true
	r.calls = append(r.calls, "register")
}

func (r *recordingRegistrar) Unregister(a *Attractor) {
	delete(r.registered, a)
	r.calls = append(r.calls, "unregister")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero radius", func(c *Config) { c.DestinationRadius = 0 }, true},
		{"negative radius", func(c *Config) { c.DestinationRadius = -1 }, true},
		{"NaN radius", func(c *Config) { c.DestinationRadius = math.NaN() }, true},
		{"max delay", func(c *Config) { c.DelayRate = 0.95 }, false},
		{"delay too high", func(c *Config) { c.DelayRate = 0.96 }, true},
		{"negative delay", func(c *Config) { c.DelayRate = -0.1 }, true},
		{"zero speed", func(c *Config) { c.MaxSpeed = 0 }, true},
		{"max speed", func(c *Config) { c.MaxSpeed = 100 }, false},
		{"speed too high", func(c *Config) { c.MaxSpeed = 100.5 }, true},
		{"unknown movement", func(c *Config) { c.Movement = Movement(7) }, true},
		{"unknown update mode", func(c *Config) { c.UpdateMode = UpdateMode(3) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DelayRate = 1
	if _, err := New("bad", cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewNilAnchorIsOrigin(t *testing.T) {
	a := mustNew(t, DefaultConfig(), nil)
	if got := a.Anchor().Position(); got != (r3.Vec{}) {
		t.Errorf("nil anchor position = %v, want origin", got)
	}
}

func TestSettersValidateIndependently(t *testing.T) {
	a := mustNew(t, DefaultConfig(), nil)

	if err := a.SetDestinationRadius(2.5); err != nil {
		t.Errorf("SetDestinationRadius: %v", err)
	}
	if err := a.SetDelayRate(0.3); err != nil {
		t.Errorf("SetDelayRate: %v", err)
	}
	if err := a.SetMaxSpeed(12); err != nil {
		t.Errorf("SetMaxSpeed: %v", err)
	}
	if err := a.SetMovement(Sphere); err != nil {
		t.Errorf("SetMovement: %v", err)
	}
	if err := a.SetUpdateMode(UnscaledTime); err != nil {
		t.Errorf("SetUpdateMode: %v", err)
	}

	want := Config{DestinationRadius: 2.5, DelayRate: 0.3, MaxSpeed: 12, Movement: Sphere, UpdateMode: UnscaledTime}
	if a.Config() != want {
		t.Errorf("Config() = %+v, want %+v", a.Config(), want)
	}

	// Rejected values leave the config untouched
	if err := a.SetDelayRate(0.99); err == nil {
		t.Error("expected delay rate 0.99 to be rejected")
	}
	if err := a.SetMaxSpeed(-1); err == nil {
		t.Error("expected negative max speed to be rejected")
	}
	if err := a.SetDestinationRadius(0); err == nil {
		t.Error("expected zero radius to be rejected")
	}
	if a.Config() != want {
		t.Errorf("rejected setters changed config: %+v", a.Config())
	}
}

func TestParseEnums(t *testing.T) {
	movements := map[string]Movement{"linear": Linear, "Smooth": Smooth, " sphere ": Sphere}
	for in, want := range movements {
		got, err := ParseMovement(in)
		if err != nil || got != want {
			t.Errorf("ParseMovement(%q) = %v, %v", in, got, err)
		}
		if back, _ := ParseMovement(got.String()); back != got {
			t.Errorf("movement %v does not round-trip through String", got)
		}
	}
	if _, err := ParseMovement("bounce"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected error for unknown movement, got %v", err)
	}

	modes := map[string]UpdateMode{"normal": Normal, "unscaled_time": UnscaledTime, "unscaled": UnscaledTime}
	for in, want := range modes {
		got, err := ParseUpdateMode(in)
		if err != nil || got != want {
			t.Errorf("ParseUpdateMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseUpdateMode("fixed"); err == nil {
		t.Error("expected error for unknown update mode")
	}
}

func TestLifecycle(t *testing.T) {
	r := newRecordingRegistrar()
	buf := pool.NewBuffer(pool.World, geom.Identity(), pool.Particle{RemainingLifetime: 0.5, StartLifetime: 1})
	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, buf)

	if a.Started() {
		t.Fatal("new attractor should be stopped")
	}
	if err := a.Start(r); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.registered[a] || !a.Started() {
		t.Error("Start should register the attractor")
	}

	a.Stop()
	if r.registered[a] || a.Started() {
		t.Error("Stop should unregister the attractor")
	}

	// Stop on a stopped attractor is a no-op
	a.Stop()
	if len(r.calls) != 2 {
		t.Errorf("expected 2 registrar calls, got %v", r.calls)
	}

	if err := a.Start(r); err != nil {
		t.Fatalf("restart: %v", err)
	}
	a.Dispose()
	if r.registered[a] {
		t.Error("Dispose should unregister")
	}
	if !a.Disposed() || len(a.Pools()) != 0 {
		t.Error("Dispose should release pools")
	}

	stats, err := a.Attract(frame, frame)
	if err != nil || stats != (TickStats{}) {
		t.Errorf("Attract after Dispose should be a no-op, got %+v, %v", stats, err)
	}
	if buf.Writes() != 0 {
		t.Error("disposed attractor touched its former pool")
	}

	if err := a.Start(r); !errors.Is(err, ErrDisposed) {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
}

func TestStartMovesBetweenRegistrars(t *testing.T) {
	r1 := newRecordingRegistrar()
	r2 := newRecordingRegistrar()
	a := mustNew(t, DefaultConfig(), nil)

	if err := a.Start(r1); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(r2); err != nil {
		t.Fatal(err)
	}
	if r1.registered[a] {
		t.Error("attractor should leave the first registrar")
	}
	if !r2.registered[a] {
		t.Error("attractor should join the second registrar")
	}
	if err := a.Start(nil); err == nil {
		t.Error("expected error starting with nil registrar")
	}
}

func TestHandlersRunInOrderPerCapture(t *testing.T) {
	buf := pool.NewBuffer(pool.World, geom.Identity(),
		pool.Particle{Position: r3.Vec{X: 10}, RemainingLifetime: 0.5, StartLifetime: 1},
		pool.Particle{Position: r3.Vec{X: 10.2}, RemainingLifetime: 0.5, StartLifetime: 1},
	)
	a := mustNew(t, DefaultConfig(), Fixed{X: 10}, buf)

	var order []string
	a.OnAttracted(func() { order = append(order, "first") })
	a.OnAttracted(nil)
	a.OnAttracted(func() { order = append(order, "second") })

	if _, err := a.Attract(frame, frame); err != nil {
		t.Fatal(err)
	}

	want := []string{"first", "second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("handler calls = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("handler calls = %v, want %v", order, want)
			break
		}
	}
}

func TestPoolListEditing(t *testing.T) {
	a := mustNew(t, DefaultConfig(), nil)
	b1 := pool.NewBuffer(pool.World, geom.Identity())
	b2 := pool.NewBuffer(pool.World, geom.Identity())

	a.AddPool(b1)
	a.AddPool(b2)
	if len(a.Pools()) != 2 {
		t.Fatalf("expected 2 pools, got %d", len(a.Pools()))
	}

	pools := a.Pools()
	pools[0] = nil
	if a.Pools()[0] == nil {
		t.Error("Pools() must return a copy")
	}

	a.SetPools(b2)
	if len(a.Pools()) != 1 || a.Pools()[0] != pool.Pool(b2) {
		t.Errorf("SetPools did not replace the list: %v", a.Pools())
	}
}
