// Field tuning tool - runs the engine on a house with live sliders for the
// solver, spawner and animator.
//
// Usage: go run ./cmd/fieldtune -layout systems/layouts/demo_house.yaml -out tuned.yaml
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/game"
	"github.com/pthm-cable/miasma/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 760
	previewW     = 640
	previewH     = 400
	panelX       = previewW + 30
	panelWidth   = windowWidth - panelX - 20
)

func main() {
	configPath := flag.String("config", "", "Base config YAML (empty = defaults)")
	layoutPath := flag.String("layout", "", "House layout (empty = demo house)")
	outPath := flag.String("out", "fieldtune.yaml", "Where Save writes the tuned config")
	flag.Parse()

	// Slider drags re-apply tuning every frame
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	house := systems.DemoHouseLayout()
	if *layoutPath != "" {
		if house, err = systems.LoadHouseLayout(*layoutPath); err != nil {
			log.Fatalf("failed to load layout: %v", err)
		}
	}

	g, err := game.NewGameWithOptions(game.Options{Seed: 1, Config: cfg})
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}
	defer g.Unload()
	if err := g.LoadHouse(house); err != nil {
		log.Fatalf("failed to load level: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Miasma Field Tuning")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	ext := house.Extents()
	pixels := make([]color.RGBA, ext.W*ext.H)
	img := rl.GenImageColor(ext.W, ext.H, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	sliders := tuningSliders(cfg)
	floor := 0
	status := ""

	for !rl.WindowShouldClose() {
		g.Update()

		grid := g.Grid()
		heatmap(pixels, grid, floor, float32(cfg.Solver.MaxPressure)*0.25)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		dst := fitRect(10, 10, previewW, previewH, float32(ext.W), float32(ext.H))
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: float32(ext.W), Height: float32(ext.H)},
			dst,
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLinesEx(dst, 1, rl.DarkGray)
		drawWisps(g, dst, grid, floor)

		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Tick: %d  Wisps: %d/%d  Total pressure: %.2f",
			g.Tick(), g.WispCount(), cfg.Spawner.MaxParticles, grid.TotalPressure()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Floor %d/%d  (%s)", floor+1, ext.D, house.Name()), 15, statsY+20, 16, rl.DarkGray)
		if status != "" {
			rl.DrawText(status, 15, statsY+40, 14, rl.Gray)
		}
		drawYAML(cfg, 15, statsY+70)

		// Control panel
		y := float32(10)
		rl.DrawText("Field Parameters", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		changed := false
		for i := range sliders {
			if sliders[i].draw(panelX, y, panelWidth) {
				changed = true
			}
			y += 42
		}
		if changed {
			if err := g.ApplyTuning(cfg); err != nil {
				status = err.Error()
			}
		}

		y += 10
		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, toggleText(g.Paused(), "Resume", "Pause")) {
			g.SetPaused(!g.Paused())
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Next Floor") {
			floor = (floor + 1) % ext.D
		}
		y += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, "Reset Level") {
			if err := g.LoadHouse(house); err != nil {
				status = err.Error()
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Save YAML") {
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = "save failed: " + err.Error()
			} else {
				status = "saved " + *outPath
			}
		}

		rl.DrawText("Press C to copy the tuned sections to the clipboard", panelX, windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			if text, err := tunedYAML(cfg); err == nil {
				rl.SetClipboardText(text)
				status = "copied to clipboard"
			}
		}

		rl.EndDrawing()
	}
}

// slider binds a raygui slider to a config value.
type slider struct {
	label    string
	min, max float32
	format   string
	value    *float64
}

func tuningSliders(cfg *config.Config) []slider {
	return []slider{
		{"Diffusion rate", 0, 0.45, "%.3f", &cfg.Solver.DiffusionRate},
		{"Decay rate", 0, 0.02, "%.4f", &cfg.Solver.DecayRate},
		{"Gradient scale", 0, 8, "%.2f", &cfg.Solver.GradientScale},
		{"Velocity damping", 0, 1, "%.2f", &cfg.Solver.VelocityDamping},
		{"Max velocity", 0.1, 4, "%.2f", &cfg.Solver.MaxVelocity},
		{"Spawn probability scale", 0, 0.3, "%.3f", &cfg.Spawner.ProbabilityScale},
		{"Life decay per tick", 0.001, 0.1, "%.4f", &cfg.Animator.LifeDecay},
		{"Noise amplitude", 0, 1.5, "%.2f", &cfg.Animator.NoiseAmplitude},
		{"Direction smoothing", 0, 1, "%.2f", &cfg.Animator.DirectionSmoothing},
	}
}

// draw renders the slider and writes back the new value. Returns true when
// the value changed.
func (s *slider) draw(x, y float32, width int32) bool {
	rl.DrawText(s.label, int32(x), int32(y), 14, rl.Gray)
	cur := float32(*s.value)
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: y + 18, Width: float32(width - 80), Height: 18},
		"", "",
		cur, s.min, s.max,
	)
	rl.DrawText(fmt.Sprintf(s.format, next), int32(x)+width-70, int32(y+18), 16, rl.DarkGray)
	if next == cur {
		return false
	}
	*s.value = float64(next)
	return true
}

// tunedYAML renders the sections the sliders edit.
func tunedYAML(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(struct {
		Solver   config.SolverConfig   `yaml:"solver"`
		Spawner  config.SpawnerConfig  `yaml:"spawner"`
		Animator config.AnimatorConfig `yaml:"animator"`
	}{cfg.Solver, cfg.Spawner, cfg.Animator})
	return string(out), err
}

func drawYAML(cfg *config.Config, x, y int32) {
	lines := []string{
		"solver:",
		fmt.Sprintf("  diffusion_rate: %.3f", cfg.Solver.DiffusionRate),
		fmt.Sprintf("  decay_rate: %.4f", cfg.Solver.DecayRate),
		fmt.Sprintf("  gradient_scale: %.2f", cfg.Solver.GradientScale),
		fmt.Sprintf("  velocity_damping: %.2f", cfg.Solver.VelocityDamping),
		fmt.Sprintf("  max_velocity: %.2f", cfg.Solver.MaxVelocity),
		"spawner:",
		fmt.Sprintf("  probability_scale: %.3f", cfg.Spawner.ProbabilityScale),
		"animator:",
		fmt.Sprintf("  life_decay: %.4f", cfg.Animator.LifeDecay),
		fmt.Sprintf("  noise_amplitude: %.2f", cfg.Animator.NoiseAmplitude),
		fmt.Sprintf("  direction_smoothing: %.2f", cfg.Animator.DirectionSmoothing),
	}
	for _, line := range lines {
		rl.DrawText(line, x, y, 14, rl.Gray)
		y += 16
	}
}

func drawWisps(g *game.Game, dst rl.Rectangle, grid *systems.FieldGrid, floor int) {
	size := grid.WorldSize()
	sx, sy := dst.Width/size.X, dst.Height/size.Y
	for _, w := range g.Wisps() {
		if _, _, z := grid.CellAt(w.Pos); z != floor {
			continue
		}
		a := uint8(clamp01(w.Visibility) * 220)
		rl.DrawCircleV(rl.Vector2{X: dst.X + w.Pos.X*sx, Y: dst.Y + w.Pos.Y*sy}, 3, rl.Color{R: 240, G: 240, B: 200, A: a})
	}
}

// fitRect centres a w:h aspect rectangle inside the box.
func fitRect(x, y, boxW, boxH, w, h float32) rl.Rectangle {
	scale := min(boxW/w, boxH/h)
	dw, dh := w*scale, h*scale
	return rl.Rectangle{X: x + (boxW-dw)/2, Y: y + (boxH-dh)/2, Width: dw, Height: dh}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
