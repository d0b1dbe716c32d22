// Package config provides configuration loading and access for attraction scenes.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/attract/attractor"
	"github.com/pthm-cable/attract/geom"
	"github.com/pthm-cable/attract/pool"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all scene configuration parameters.
type Config struct {
	Screen     ScreenConfig      `yaml:"screen"`
	Time       TimeConfig        `yaml:"time"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Emitters   []EmitterConfig   `yaml:"emitters"`
	Attractors []AttractorConfig `yaml:"attractors"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	TargetFPS     int     `yaml:"target_fps"`
	PixelsPerUnit float64 `yaml:"pixels_per_unit"` // world units to screen pixels
}

// TimeConfig holds update loop timing.
type TimeConfig struct {
	DT             float64 `yaml:"dt"`               // fixed real seconds per headless tick
	TimeScale      float64 `yaml:"time_scale"`       // scaled time multiplier (0 = paused)
	StepsPerUpdate int     `yaml:"steps_per_update"` // ticks per update call
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // seconds of scaled time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks averaged by the perf collector
}

// EmitterConfig defines one particle pool.
type EmitterConfig struct {
	Name            string     `yaml:"name"`
	SimulationSpace string     `yaml:"simulation_space"` // world | local
	Position        [3]float64 `yaml:"position"`
	RotationAxis    [3]float64 `yaml:"rotation_axis"`
	RotationAngle   float64    `yaml:"rotation_angle"` // radians
	Scale           [3]float64 `yaml:"scale"`
	Rate            float64    `yaml:"rate"` // particles per second
	LifetimeMin     float64    `yaml:"lifetime_min"`
	LifetimeMax     float64    `yaml:"lifetime_max"`
	SpeedMin        float64    `yaml:"speed_min"`
	SpeedMax        float64    `yaml:"speed_max"`
	Spread          float64    `yaml:"spread"` // cone half-angle, radians
	MaxParticles    int        `yaml:"max_particles"`
}

// AttractorConfig defines one attractor.
type AttractorConfig struct {
	Name              string     `yaml:"name"`
	Position          [3]float64 `yaml:"position"`
	OrbitRadius       float64    `yaml:"orbit_radius"` // 0 = stationary anchor
	OrbitSpeed        float64    `yaml:"orbit_speed"`  // radians per second of scaled time
	DestinationRadius float64    `yaml:"destination_radius"`
	DelayRate         float64    `yaml:"delay_rate"`
	MaxSpeed          float64    `yaml:"max_speed"`
	Movement          string     `yaml:"movement"`    // linear | smooth | sphere
	UpdateMode        string     `yaml:"update_mode"` // normal | unscaled_time
	Pools             []string   `yaml:"pools"`       // emitter names
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	EmitterIndex map[string]int // name -> index into Emitters
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(cfg, data); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg, then validates and recomputes derived values.
// Lists (emitters, attractors) in data replace the existing lists wholesale.
func Parse(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return cfg.finish()
}

func (c *Config) finish() error {
	c.applyDefaults()
	c.computeDerived()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyDefaults fills zero values that have a sensible non-zero default.
func (c *Config) applyDefaults() {
	if c.Time.StepsPerUpdate < 1 {
		c.Time.StepsPerUpdate = 1
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}
	if c.Screen.PixelsPerUnit <= 0 {
		c.Screen.PixelsPerUnit = 40
	}
	for i := range c.Emitters {
		if c.Emitters[i].Scale == [3]float64{} {
			c.Emitters[i].Scale = [3]float64{1, 1, 1}
		}
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Emitters = append([]EmitterConfig(nil), c.Emitters...)
	out.Attractors = make([]AttractorConfig, len(c.Attractors))
	for i, a := range c.Attractors {
		a.Pools = append([]string(nil), a.Pools...)
		out.Attractors[i] = a
	}
	out.computeDerived()
	return &out
}

// AttractorIndex returns the index of the named attractor, or -1.
func (c *Config) AttractorIndex(name string) int {
	for i, a := range c.Attractors {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.EmitterIndex = make(map[string]int, len(c.Emitters))
	for i, e := range c.Emitters {
		c.Derived.EmitterIndex[e.Name] = i
	}
}

// Validate checks cross-references and value ranges.
func (c *Config) Validate() error {
	if !(c.Time.DT > 0) {
		return fmt.Errorf("time.dt %v must be > 0", c.Time.DT)
	}
	if !(c.Time.TimeScale >= 0) {
		return fmt.Errorf("time.time_scale %v must be >= 0", c.Time.TimeScale)
	}

	seen := make(map[string]bool, len(c.Emitters))
	for i, e := range c.Emitters {
		if e.Name == "" {
			return fmt.Errorf("emitters[%d]: name is required", i)
		}
		if seen[e.Name] {
			return fmt.Errorf("emitters[%d]: duplicate name %q", i, e.Name)
		}
		seen[e.Name] = true
		if _, err := e.Space(); err != nil {
			return fmt.Errorf("emitter %q: %w", e.Name, err)
		}
		if err := e.Settings().Validate(); err != nil {
			return fmt.Errorf("emitter %q: %w", e.Name, err)
		}
	}

	for i, a := range c.Attractors {
		if _, err := a.Tunables(); err != nil {
			return fmt.Errorf("attractors[%d] %q: %w", i, a.Name, err)
		}
		for _, name := range a.Pools {
			if !seen[name] {
				return fmt.Errorf("attractor %q: unknown pool %q", a.Name, name)
			}
		}
	}
	return nil
}

// Space parses the emitter's simulation space.
func (e EmitterConfig) Space() (pool.Space, error) {
	return pool.ParseSpace(e.SimulationSpace)
}

// Transform returns the emitter's world placement.
func (e EmitterConfig) Transform() geom.Transform {
	return geom.Transform{
		Position: vec(e.Position),
		Axis:     vec(e.RotationAxis),
		Angle:    e.RotationAngle,
		Scale:    vec(e.Scale),
	}
}

// Settings converts the spawn parameters.
func (e EmitterConfig) Settings() pool.EmitterSettings {
	return pool.EmitterSettings{
		Rate:         e.Rate,
		LifetimeMin:  e.LifetimeMin,
		LifetimeMax:  e.LifetimeMax,
		SpeedMin:     e.SpeedMin,
		SpeedMax:     e.SpeedMax,
		Spread:       e.Spread,
		MaxParticles: e.MaxParticles,
	}
}

// Tunables parses and validates the attractor's tunables.
func (a AttractorConfig) Tunables() (attractor.Config, error) {
	movement, err := attractor.ParseMovement(a.Movement)
	if err != nil {
		return attractor.Config{}, err
	}
	mode, err := attractor.ParseUpdateMode(a.UpdateMode)
	if err != nil {
		return attractor.Config{}, err
	}
	cfg := attractor.Config{
		DestinationRadius: a.DestinationRadius,
		DelayRate:         a.DelayRate,
		MaxSpeed:          a.MaxSpeed,
		Movement:          movement,
		UpdateMode:        mode,
	}
	return cfg, cfg.Validate()
}

// Anchor returns the attractor's base world position.
func (a AttractorConfig) Anchor() r3.Vec {
	return vec(a.Position)
}

// SetAttractor stores cfg back into the YAML-facing fields.
func (a *AttractorConfig) SetAttractor(cfg attractor.Config) {
	a.DestinationRadius = cfg.DestinationRadius
	a.DelayRate = cfg.DelayRate
	a.MaxSpeed = cfg.MaxSpeed
	a.Movement = cfg.Movement.String()
	a.UpdateMode = cfg.UpdateMode.String()
}

func vec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// WriteYAML writes the config to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
