// Package scheduler drives registered attractors once per update.
package scheduler

import (
	"log/slog"

	"github.com/pthm-cable/attract/attractor"
)

// Registry holds the attractors that receive ticks, in registration order.
// It is not safe for concurrent use; ticks run sequentially on the update
// goroutine.
type Registry struct {
	attractors []*attractor.Attractor
	index      map[*attractor.Attractor]int
	logger     *slog.Logger

	// Copy of attractors taken at the start of Update so registration
	// changes made by capture handlers apply from the next tick
	ticking []*attractor.Attractor
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		index:  make(map[*attractor.Attractor]int),
		logger: logger,
	}
}

// Register adds a to the registry. Registering twice is a no-op.
func (r *Registry) Register(a *attractor.Attractor) {
	if a == nil {
		return
	}
	if _, ok := r.index[a]; ok {
		return
	}
	r.index[a] = len(r.attractors)
	r.attractors = append(r.attractors, a)
}

// Unregister removes a from the registry. Unknown attractors are ignored.
func (r *Registry) Unregister(a *attractor.Attractor) {
	i, ok := r.index[a]
	if !ok {
		return
	}
	delete(r.index, a)
	copy(r.attractors[i:], r.attractors[i+1:])
	r.attractors[len(r.attractors)-1] = nil
	r.attractors = r.attractors[:len(r.attractors)-1]
	for j := i; j < len(r.attractors); j++ {
		r.index[r.attractors[j]] = j
	}
}

// Contains reports whether a is registered.
func (r *Registry) Contains(a *attractor.Attractor) bool {
	_, ok := r.index[a]
	return ok
}

// Len returns the number of registered attractors.
func (r *Registry) Len() int {
	return len(r.attractors)
}

// All returns the registered attractors in registration order.
func (r *Registry) All() []*attractor.Attractor {
	return append([]*attractor.Attractor(nil), r.attractors...)
}

// Update ticks every registered attractor once and returns the combined
// stats plus the number of attractors whose tick failed. A failing
// attractor is logged and skipped; it is retried on the next Update.
func (r *Registry) Update(dt, unscaledDt float64) (total attractor.TickStats, failed int) {
	r.ticking = append(r.ticking[:0], r.attractors...)
	for _, a := range r.ticking {
		stats, err := a.Attract(dt, unscaledDt)
		total.Add(stats)
		if err != nil {
			failed++
			r.logger.Warn("attract tick failed", "attractor", a.Name(), "error", err)
		}
	}
	clear(r.ticking)
	return total, failed
}
