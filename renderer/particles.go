package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/attract/camera"
	"github.com/pthm-cable/attract/sim"
)

// emitterPalette colors particles by their emitter index, cycling.
var emitterPalette = []rl.Color{
	{R: 255, G: 150, B: 50, A: 255},  // orange
	{R: 80, G: 180, B: 255, A: 255},  // blue
	{R: 150, G: 230, B: 100, A: 255}, // green
	{R: 220, G: 100, B: 220, A: 255}, // magenta
}

// ParticleRenderer draws pool particles.
type ParticleRenderer struct {
	Size float32 // radius in pixels at full lifetime
}

// NewParticleRenderer creates a particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{Size: 3}
}

// Draw renders particles, fading and shrinking them as their lifetime runs out.
func (r *ParticleRenderer) Draw(cam *camera.Camera, particles []sim.ParticleView) {
	for i := range particles {
		p := &particles[i]

		if !cam.IsVisible(p.Position, 0) {
			continue
		}

		color := emitterPalette[p.Emitter%len(emitterPalette)]
		color.A = uint8(60 + p.LifeRatio*195)

		size := r.Size * float32(p.LifeRatio)
		if size < 1 {
			size = 1
		}
		sx, sy := cam.WorldToScreen(p.Position)
		rl.DrawCircle(int32(sx), int32(sy), size, color)
	}
}
