// Package renderer draws a scene with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/attract/camera"
	"github.com/pthm-cable/attract/sim"
)

var (
	backgroundColor = rl.Color{R: 14, G: 18, B: 24, A: 255}
	radiusColor     = rl.Color{R: 255, G: 220, B: 120, A: 200}
	selectedColor   = rl.Color{R: 255, G: 255, B: 255, A: 255}
	emitterColor    = rl.Color{R: 120, G: 130, B: 140, A: 255}
)

// SceneRenderer draws emitters, particles and attractors.
type SceneRenderer struct {
	particles *ParticleRenderer
	buf       []sim.ParticleView
}

// NewSceneRenderer creates a scene renderer.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{particles: NewParticleRenderer()}
}

// Draw renders the scene through cam. selected is the attractor index
// highlighted by the tuning panel, or -1.
func (r *SceneRenderer) Draw(s *sim.Scene, cam *camera.Camera, selected int) {
	rl.ClearBackground(backgroundColor)

	for _, e := range s.Emitters() {
		x, y := cam.WorldToScreen(e.Position())
		sx, sy := int32(x), int32(y)
		rl.DrawLine(sx-6, sy, sx+6, sy, emitterColor)
		rl.DrawLine(sx, sy-6, sx, sy+6, emitterColor)
		rl.DrawText(e.Name(), sx+8, sy+4, 12, emitterColor)
	}

	r.buf = s.WorldParticles(r.buf)
	r.particles.Draw(cam, r.buf)

	for i, a := range s.Attractors() {
		color := radiusColor
		if i == selected {
			color = selectedColor
		}
		x, y := cam.WorldToScreen(a.Anchor().Position())
		sx, sy := int32(x), int32(y)
		rl.DrawCircleLines(sx, sy, cam.Length(a.Config().DestinationRadius), color)
		rl.DrawCircle(sx, sy, 3, color)
		rl.DrawText(a.Name(), sx+8, sy-16, 12, color)
	}
}
