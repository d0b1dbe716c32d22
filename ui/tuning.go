package ui

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/attract/attractor"
	"github.com/pthm-cable/attract/scheduler"
)

var movements = []attractor.Movement{attractor.Linear, attractor.Smooth, attractor.Sphere}

// TuningPanel edits one attractor's tunables and the clock's time scale
// while the scene runs.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	selected int
}

// NewTuningPanel creates a visible panel at (x, y).
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Selected returns the index of the attractor being tuned.
func (p *TuningPanel) Selected() int {
	return p.selected
}

// SelectNext cycles to the next of n attractors.
func (p *TuningPanel) SelectNext(n int) {
	if n == 0 {
		p.selected = 0
		return
	}
	p.selected = (p.selected + 1) % n
}

// Draw renders the panel and applies any slider or button changes.
func (p *TuningPanel) Draw(attractors []*attractor.Attractor, clock *scheduler.Clock) {
	if !p.visible || len(attractors) == 0 {
		return
	}
	if p.selected >= len(attractors) {
		p.selected = 0
	}
	a := attractors[p.selected]
	cfg := a.Config()

	r := p.renderer
	pad := r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, 330)

	x := float32(p.x + pad)
	y := r.DrawSectionHeader(p.x+pad, p.y+pad, fmt.Sprintf("Attractor: %s (%d/%d)", a.Name(), p.selected+1, len(attractors)))
	sliderWidth := float32(p.width - 2*pad - 50)

	slider := func(label string, value, lo, hi float64) float64 {
		// raygui clamps, so widen the range to hold an out-of-range value
		lo, hi = min(lo, value), max(hi, value)
		rl.DrawText(label, int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y), Width: sliderWidth, Height: 16},
			"", "",
			float32(value), float32(lo), float32(hi),
		)
		rl.DrawText(fmt.Sprintf("%.2f", v), int32(x+sliderWidth+6), y+2, r.Theme.FontSize, r.Theme.ValueColor)
		y += 24
		if v == float32(value) {
			return value
		}
		return float64(v)
	}

	apply := func(what string, err error) {
		if err != nil {
			slog.Warn("tuning rejected", "attractor", a.Name(), "field", what, "error", err)
		}
	}

	if v := slider("Max speed", cfg.MaxSpeed, 0.01, 2); v != cfg.MaxSpeed {
		apply("max_speed", a.SetMaxSpeed(v))
	}
	if v := slider("Delay rate", cfg.DelayRate, 0, attractor.MaxDelayRate); v != cfg.DelayRate {
		apply("delay_rate", a.SetDelayRate(v))
	}
	if v := slider("Destination radius", cfg.DestinationRadius, 0.05, 5); v != cfg.DestinationRadius {
		apply("destination_radius", a.SetDestinationRadius(v))
	}

	rl.DrawText("Movement", int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	bw := (sliderWidth - 10) / 3
	for i, m := range movements {
		label := m.String()
		if m == cfg.Movement {
			label = "[" + label + "]"
		}
		if gui.Button(rl.Rectangle{X: x + float32(i)*(bw+5), Y: float32(y), Width: bw, Height: 22}, label) && m != cfg.Movement {
			apply("movement", a.SetMovement(m))
		}
	}
	y += 30

	mode := attractor.UnscaledTime
	if cfg.UpdateMode == attractor.UnscaledTime {
		mode = attractor.Normal
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: sliderWidth, Height: 22}, "Update mode: "+cfg.UpdateMode.String()) {
		apply("update_mode", a.SetUpdateMode(mode))
	}
	y += 32

	if v := slider("Time scale", clock.TimeScale(), 0, 3); v != clock.TimeScale() {
		apply("time_scale", clock.SetTimeScale(v))
	}
}
