// Attraction path preview tool - plots particle paths for each movement
// profile with sliders for the attractor tunables.
//
// Usage: go run ./cmd/pathpreview
package main

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/attract/attractor"
	"github.com/pthm-cable/attract/camera"
)

const (
	windowWidth  = 1460
	windowHeight = 720
	plotSize     = 360
	panelX       = 20
	panelWidth   = 300
)

var movements = []attractor.Movement{attractor.Linear, attractor.Smooth, attractor.Sphere}

var profileColors = []rl.Color{
	{R: 230, G: 120, B: 40, A: 255},
	{R: 40, G: 140, B: 220, A: 255},
	{R: 90, G: 180, B: 60, A: 255},
}

func defaultParams() PreviewParams {
	return PreviewParams{
		MaxSpeed:          0.1,
		DelayRate:         0.2,
		DestinationRadius: 0.5,
		Lifetime:          3,
		LaunchSpeed:       3,
		Particles:         9,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Attraction Path Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	traces := make([][]Trace, len(movements))
	needsTrace := true

	for !rl.WindowShouldClose() {
		if needsTrace {
			for i, m := range movements {
				t, err := tracePaths(params, m)
				if err != nil {
					slog.Error("trace failed", "movement", m, "error", err)
					continue
				}
				traces[i] = t
			}
			needsTrace = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		for i, m := range movements {
			x := int32(panelX + panelWidth + 20 + i*(plotSize+10))
			drawPlot(x, 60, m, traces[i], profileColors[i], params.DestinationRadius)
		}

		// Control panel
		panelY := float32(10)
		rl.DrawText("Attractor Parameters", panelX, int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label string, value *float32, lo, hi float32, format string) {
			rl.DrawText(label, panelX, int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 70, Height: 20},
				"", "",
				*value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, *value), int32(panelX+panelWidth-60), int32(panelY+2), 16, rl.DarkGray)
			if v != *value {
				*value = v
				needsTrace = true
			}
			panelY += 35
		}

		slider("Max speed (units/frame at 60 fps)", &params.MaxSpeed, 0.01, 1, "%.2f")
		slider("Delay rate (fraction of lifetime)", &params.DelayRate, 0, attractor.MaxDelayRate, "%.2f")
		slider("Destination radius", &params.DestinationRadius, 0.05, 3, "%.2f")
		slider("Lifetime (seconds)", &params.Lifetime, 0.5, 10, "%.1f")
		slider("Launch speed (sideways)", &params.LaunchSpeed, 0, 10, "%.1f")

		count := float32(params.Particles)
		slider("Particles", &count, 1, 25, "%.0f")
		if int(count) != params.Particles {
			params.Particles = int(count)
			needsTrace = true
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsTrace = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", panelX, int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(params) {
			rl.DrawText(line, panelX, int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", panelX, windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yamlLines(params) {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func yamlLines(p PreviewParams) []string {
	return []string{
		"attractors:",
		"  - destination_radius: " + fmt.Sprintf("%.2f", p.DestinationRadius),
		"    delay_rate: " + fmt.Sprintf("%.2f", p.DelayRate),
		"    max_speed: " + fmt.Sprintf("%.2f", p.MaxSpeed),
	}
}

// drawPlot draws one movement profile's paths in a square panel.
func drawPlot(x, y int32, m attractor.Movement, traces []Trace, color rl.Color, radius float32) {
	cam := camera.New(plotSize, plotSize, plotSize/20.0)
	at := func(p r3.Vec) rl.Vector2 {
		sx, sy := cam.WorldToScreen(p)
		return rl.Vector2{X: sx + float32(x), Y: sy + float32(y)}
	}

	rl.DrawRectangleLines(x, y, plotSize, plotSize, rl.DarkGray)

	captured := 0
	for _, t := range traces {
		for i := 1; i < len(t.Points); i++ {
			rl.DrawLineEx(at(t.Points[i-1]), at(t.Points[i]), 1.5, color)
		}
		if t.Captured {
			captured++
		}
	}

	dst := at(destination)
	rl.DrawCircleLines(int32(dst.X), int32(dst.Y), cam.Length(float64(radius)), rl.Black)
	rl.DrawCircle(int32(dst.X), int32(dst.Y), 3, rl.Black)

	rl.DrawText(m.String(), x, y-24, 18, color)
	rl.DrawText(fmt.Sprintf("captured %d/%d", captured, len(traces)), x, y+plotSize+6, 14, rl.Gray)
}
