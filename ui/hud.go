package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Live        int
	Captured    int64
	Expired     int64
	CaptureFrac float64 // last stats window
	DistP50     float64 // last stats window
	Tick        int32
	FPS         int32
	TimeScale   float64
	Paused      bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Live: %d | Captured: %d | Expired: %d", data.Live, data.Captured, data.Expired),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time scale: %.2fx | FPS: %d", data.Tick, data.TimeScale, data.FPS),
		10, 55, 16, rl.LightGray,
	)
	h.renderer.DrawBar(10, 78, "Capture", float32(data.CaptureFrac), 240)
	rl.DrawText(fmt.Sprintf("Median distance: %.2f", data.DistP50), 10, 98, 14, rl.Gray)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 118, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
