// Package telemetry tracks attraction statistics and performance, and writes
// them as CSV experiment output.
package telemetry

import "github.com/pthm-cable/attract/attractor"

// Collector accumulates events within time windows and produces WindowStats.
// Windows are measured in scaled simulation time, so a paused scene never
// closes one.
type Collector struct {
	windowDurationSec float64
	windowElapsedSec  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawned  int
	expired  int
	captured int
	moved    int
	delayed  int
	failed   int
}

// windowEpsilon absorbs float drift from summing per-tick deltas.
const windowEpsilon = 1e-6

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
func NewCollector(windowDurationSec float64) *Collector {
	return &Collector{windowDurationSec: windowDurationSec}
}

// Advance adds dt seconds of scaled simulation time to the current window.
func (c *Collector) Advance(dt float64) {
	if dt > 0 {
		c.windowElapsedSec += dt
	}
}

// RecordCapture records one captured particle. Suitable as an
// attractor.OnAttracted handler.
func (c *Collector) RecordCapture() {
	c.captured++
}

// RecordSpawned records newly emitted particles.
func (c *Collector) RecordSpawned(n int) {
	c.spawned += n
}

// RecordExpired records particles that died of age without being captured.
func (c *Collector) RecordExpired(n int) {
	c.expired += n
}

// RecordTick folds one scheduler update into the window.
func (c *Collector) RecordTick(stats attractor.TickStats) {
	c.moved += stats.Moved
	c.delayed += stats.Delayed
}

// RecordFailures records attractor ticks that returned an error.
func (c *Collector) RecordFailures(n int) {
	c.failed += n
}

// Captured returns captures in the current window.
func (c *Collector) Captured() int {
	return c.captured
}

// ShouldFlush returns true once the window has covered its duration of
// simulation time.
func (c *Collector) ShouldFlush() bool {
	return c.windowElapsedSec > 0 && c.windowElapsedSec >= c.windowDurationSec-windowEpsilon
}

// Flush produces a WindowStats and resets counters for the next window.
// simTimeSec is the clock's scaled time at currentTick; live is the current
// particle count; distances are live particle distances to their attractor
// destination.
func (c *Collector) Flush(currentTick int32, simTimeSec float64, live int, distances []float64) WindowStats {
	expired := c.expired

	var captureRate, captureFrac float64
	if c.windowElapsedSec > 0 {
		captureRate = float64(c.captured) / c.windowElapsedSec
	}
	if c.captured+expired > 0 {
		captureFrac = float64(c.captured) / float64(c.captured+expired)
	}

	mean, p10, p50, p90 := ComputeDistanceStats(distances)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTimeSec,

		Live:    live,
		Spawned: c.spawned,
		Expired: expired,

		Captured:    c.captured,
		Moved:       c.moved,
		Delayed:     c.delayed,
		Failed:      c.failed,
		CaptureRate: captureRate,
		CaptureFrac: captureFrac,

		DistMean: mean,
		DistP10:  p10,
		DistP50:  p50,
		DistP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowElapsedSec = 0
	c.spawned = 0
	c.expired = 0
	c.captured = 0
	c.moved = 0
	c.delayed = 0
	c.failed = 0

	return stats
}

// WindowElapsed returns the simulation seconds covered by the current window.
func (c *Collector) WindowElapsed() float64 {
	return c.windowElapsedSec
}
