package scheduler

import "fmt"

// Clock turns raw frame time into the scaled and unscaled deltas handed to
// attractors. TimeScale 0 pauses scaled time while unscaled time keeps running.
type Clock struct {
	timeScale float64

	Time         float64 // accumulated scaled time
	UnscaledTime float64 // accumulated real time
	Frame        int64
}

// NewClock creates a clock with the given time scale.
func NewClock(timeScale float64) (*Clock, error) {
	c := &Clock{}
	if err := c.SetTimeScale(timeScale); err != nil {
		return nil, err
	}
	return c, nil
}

// TimeScale returns the current time scale.
func (c *Clock) TimeScale() float64 {
	return c.timeScale
}

// SetTimeScale sets the scaled-time multiplier.
func (c *Clock) SetTimeScale(s float64) error {
	if !(s >= 0) {
		return fmt.Errorf("time scale %v must be >= 0", s)
	}
	c.timeScale = s
	return nil
}

// Advance moves the clock forward by raw seconds of real time and returns
// the scaled and unscaled deltas for this frame.
func (c *Clock) Advance(raw float64) (dt, unscaledDt float64) {
	if raw < 0 {
		raw = 0
	}
	dt = raw * c.timeScale
	c.Time += dt
	c.UnscaledTime += raw
	c.Frame++
	return dt, raw
}
