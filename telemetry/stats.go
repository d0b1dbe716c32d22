package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated attraction statistics for a time window.
type WindowStats struct {
	// Window timing
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population
	Live    int `csv:"live"`
	Spawned int `csv:"spawned"`
	Expired int `csv:"expired"` // died of old age, not captured

	// Attraction
	Captured    int     `csv:"captured"`
	Moved       int     `csv:"moved"`        // particle-ticks repositioned
	Delayed     int     `csv:"delayed"`      // particle-ticks still in the delay window
	Failed      int     `csv:"failed"`       // attractor ticks that returned an error
	CaptureRate float64 `csv:"capture_rate"` // captures per second of sim time
	CaptureFrac float64 `csv:"capture_frac"` // captured / (captured + expired)

	// Distance from live particles to their attractor destination
	DistMean float64 `csv:"dist_mean"`
	DistP10  float64 `csv:"dist_p10"`
	DistP50  float64 `csv:"dist_p50"`
	DistP90  float64 `csv:"dist_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistanceStats calculates mean and percentiles from distance values.
func ComputeDistanceStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("live", s.Live),
		slog.Int("spawned", s.Spawned),
		slog.Int("expired", s.Expired),
		slog.Int("captured", s.Captured),
		slog.Int("moved", s.Moved),
		slog.Int("delayed", s.Delayed),
		slog.Int("failed", s.Failed),
		slog.Float64("capture_rate", s.CaptureRate),
		slog.Float64("capture_frac", s.CaptureFrac),
		slog.Float64("dist_mean", s.DistMean),
		slog.Float64("dist_p10", s.DistP10),
		slog.Float64("dist_p50", s.DistP50),
		slog.Float64("dist_p90", s.DistP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"live", s.Live,
		"spawned", s.Spawned,
		"expired", s.Expired,
		"captured", s.Captured,
		"capture_rate", s.CaptureRate,
		"capture_frac", s.CaptureFrac,
		"dist_p50", s.DistP50,
	)
}
