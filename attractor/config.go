package attractor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("attractor: invalid config")

// Configuration limits.
const (
	MaxDelayRate = 0.95
	MaxMaxSpeed  = 100.0
)

// Movement selects how a particle is stepped toward its destination.
type Movement uint8

const (
	Linear Movement = iota // straight move, step spread over the remaining duration
	Smooth                 // re-target along the chord by elapsed fraction
	Sphere                 // re-target along an arc by elapsed fraction
)

func (m Movement) String() string {
	switch m {
	case Linear:
		return "linear"
	case Smooth:
		return "smooth"
	case Sphere:
		return "sphere"
	}
	return fmt.Sprintf("movement(%d)", uint8(m))
}

// ParseMovement parses "linear", "smooth" or "sphere".
func ParseMovement(s string) (Movement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "smooth":
		return Smooth, nil
	case "sphere":
		return Sphere, nil
	}
	return Linear, fmt.Errorf("unknown movement %q: %w", s, ErrInvalidConfig)
}

// UpdateMode selects which frame delta drives the per-tick speed.
type UpdateMode uint8

const (
	Normal       UpdateMode = iota // scaled delta time
	UnscaledTime                   // real delta time, ignores time scale
)

func (u UpdateMode) String() string {
	switch u {
	case Normal:
		return "normal"
	case UnscaledTime:
		return "unscaled_time"
	}
	return fmt.Sprintf("update_mode(%d)", uint8(u))
}

// ParseUpdateMode parses "normal" or "unscaled_time".
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "":
		return Normal, nil
	case "unscaled_time", "unscaled":
		return UnscaledTime, nil
	}
	return Normal, fmt.Errorf("unknown update mode %q: %w", s, ErrInvalidConfig)
}

// Config holds the tunable parameters of one attractor.
type Config struct {
	DestinationRadius float64    // capture distance, > 0
	DelayRate         float64    // fraction of lifetime before attraction starts, [0, 0.95]
	MaxSpeed          float64    // speed at the 60 Hz baseline, (0, 100]
	Movement          Movement   // movement profile
	UpdateMode        UpdateMode // time source
}

// DefaultConfig returns the defaults of a freshly created attractor.
func DefaultConfig() Config {
	return Config{
		DestinationRadius: 1,
		DelayRate:         0,
		MaxSpeed:          1,
		Movement:          Linear,
		UpdateMode:        Normal,
	}
}

// Validate checks every field against its allowed range.
func (c Config) Validate() error {
	if err := validateRadius(c.DestinationRadius); err != nil {
		return err
	}
	if err := validateDelayRate(c.DelayRate); err != nil {
		return err
	}
	if err := validateMaxSpeed(c.MaxSpeed); err != nil {
		return err
	}
	if c.Movement > Sphere {
		return fmt.Errorf("movement %d: %w", c.Movement, ErrInvalidConfig)
	}
	if c.UpdateMode > UnscaledTime {
		return fmt.Errorf("update mode %d: %w", c.UpdateMode, ErrInvalidConfig)
	}
	return nil
}

// NaN fails every comparison, so the checks are written to reject it.
func validateRadius(v float64) error {
	if !(v > 0) {
		return fmt.Errorf("destination radius %v must be > 0: %w", v, ErrInvalidConfig)
	}
	return nil
}

func validateDelayRate(v float64) error {
	if !(v >= 0 && v <= MaxDelayRate) {
		return fmt.Errorf("delay rate %v must be in [0, %v]: %w", v, MaxDelayRate, ErrInvalidConfig)
	}
	return nil
}

func validateMaxSpeed(v float64) error {
	if !(v > 0 && v <= MaxMaxSpeed) {
		return fmt.Errorf("max speed %v must be in (0, %v]: %w", v, MaxMaxSpeed, ErrInvalidConfig)
	}
	return nil
}
