package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/attract/camera"
	"github.com/pthm-cable/attract/config"
	"github.com/pthm-cable/attract/renderer"
	"github.com/pthm-cable/attract/sim"
	"github.com/pthm-cable/attract/ui"
)

const controlsLegend = "SPACE pause | TAB next attractor | H panel | R reset time scale | arrows/wheel camera | HOME reset camera | ESC quit"

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Scene ticks per update call (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *stepsPerUpdate > 0 {
		cfg.Time.StepsPerUpdate = *stepsPerUpdate
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Config:         cfg,
		Seed:           rngSeed,
		Logger:         logger,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	}

	if *headless {
		runHeadless(opts, *maxTicks)
		return
	}
	runWindowed(opts, *maxTicks)
}

func runHeadless(opts sim.Options, maxTicks int) {
	s, err := sim.NewScene(opts)
	if err != nil {
		slog.Error("failed to build scene", "error", err)
		os.Exit(1)
	}
	defer closeScene(s)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"emitters", len(s.Emitters()),
		"attractors", len(s.Attractors()),
		"max_ticks", maxTicks,
		"steps_per_update", opts.Config.Time.StepsPerUpdate,
	)

	for {
		s.UpdateHeadless()

		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			spawned, captured, expired := s.Totals()
			slog.Info("max ticks reached",
				"tick", s.Tick(),
				"spawned", spawned,
				"captured", captured,
				"expired", expired,
				"capture_frac", s.CaptureFraction(),
			)
			return
		}
	}
}

func runWindowed(opts sim.Options, maxTicks int) {
	cfg := opts.Config
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Particle Attractor")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := sim.NewScene(opts)
	if err != nil {
		slog.Error("failed to build scene", "error", err)
		return
	}
	defer closeScene(s)

	cam := camera.New(float32(cfg.Screen.Width), float32(cfg.Screen.Height), float32(cfg.Screen.PixelsPerUnit))
	scene := renderer.NewSceneRenderer()
	hud := ui.NewHUD()
	panel := ui.NewTuningPanel(int32(cfg.Screen.Width)-290, 10, 280)

	pausedScale := cfg.Time.TimeScale
	for !rl.WindowShouldClose() {
		clock := s.Clock()
		switch {
		case rl.IsKeyPressed(rl.KeySpace):
			if clock.TimeScale() > 0 {
				pausedScale = clock.TimeScale()
				clock.SetTimeScale(0)
			} else {
				clock.SetTimeScale(pausedScale)
			}
		case rl.IsKeyPressed(rl.KeyTab):
			panel.SelectNext(len(s.Attractors()))
		case rl.IsKeyPressed(rl.KeyH):
			panel.Toggle()
		case rl.IsKeyPressed(rl.KeyR):
			clock.SetTimeScale(cfg.Time.TimeScale)
		}

		handleCameraInput(cam)

		s.Update(float64(rl.GetFrameTime()))
		s.RecordFrame()

		stats := s.LastStats()
		_, captured, expired := s.Totals()

		rl.BeginDrawing()
		scene.Draw(s, cam, panel.Selected())
		hud.Draw(ui.HUDData{
			Title:       "Particle Attractor",
			Live:        s.LiveParticles(),
			Captured:    captured,
			Expired:     expired,
			CaptureFrac: stats.CaptureFrac,
			DistP50:     stats.DistP50,
			Tick:        s.Tick(),
			FPS:         rl.GetFPS(),
			TimeScale:   clock.TimeScale(),
			Paused:      clock.TimeScale() == 0,
		})
		panel.Draw(s.Attractors(), clock)
		hud.DrawControls(int32(cfg.Screen.Height), controlsLegend)
		rl.EndDrawing()

		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			break
		}
	}
}

// handleCameraInput pans with the arrow keys and zooms toward the cursor
// with the mouse wheel.
func handleCameraInput(cam *camera.Camera) {
	if rl.IsWindowResized() {
		cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}

	const panSpeed = 8.0 // pixels per frame
	if rl.IsKeyDown(rl.KeyRight) {
		cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Pan(0, panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		cam.ZoomAt(1+wheel*0.1, mouse.X, mouse.Y)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}

func closeScene(s *sim.Scene) {
	if err := s.Close(); err != nil {
		slog.Error("failed to close scene", "error", err)
	}
}
