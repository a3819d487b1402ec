// Snapshot tool - runs the engine headless for a number of ticks, then
// renders one floor of the field and its wisps to a PNG for inspection.
//
// Usage: go run ./cmd/snapshot -layout systems/layouts/demo_house.yaml -ticks 1200 -floor 0 -out field.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/game"
	"github.com/pthm-cable/miasma/renderer"
	"github.com/pthm-cable/miasma/systems"
	"github.com/pthm-cable/miasma/ui"
)

func main() {
	configPath := flag.String("config", "", "Config YAML (empty = defaults)")
	layoutPath := flag.String("layout", "", "House layout (empty = demo house)")
	outPath := flag.String("out", "field.png", "Output PNG path")
	ticks := flag.Int("ticks", 1200, "Ticks to simulate before rendering")
	floor := flag.Int("floor", 0, "Floor to render")
	seed := flag.Int64("seed", 1, "Random seed")
	width := flag.Int("width", 1024, "Render width")
	height := flag.Int("height", 640, "Render height")
	flow := flag.Bool("flow", false, "Draw velocity arrows")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("failed to load config", err)
	}
	house := systems.DemoHouseLayout()
	if *layoutPath != "" {
		if house, err = systems.LoadHouseLayout(*layoutPath); err != nil {
			fail("failed to load layout", err)
		}
	}

	g, err := game.NewGameWithOptions(game.Options{Seed: *seed, Config: cfg})
	if err != nil {
		fail("failed to create engine", err)
	}
	defer g.Unload()
	if err := g.LoadHouse(house); err != nil {
		fail("failed to load level", err)
	}
	for i := 0; i < *ticks; i++ {
		g.Step()
	}

	// Hidden window for the GL context
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Miasma Snapshot")
	defer rl.CloseWindow()

	view := renderer.NewView("snapshot", int32(*width), int32(*height), float32(cfg.Solver.MaxPressure))
	defer view.Unload()
	view.Overlays().SetEnabled(ui.OverlayFlow, *flow)

	if err := view.Snapshot(g, *floor, *outPath); err != nil {
		fail("failed to render snapshot", err)
	}
	fmt.Printf("Snapshot written to: %s (%dx%d, tick %d, %d wisps)\n",
		*outPath, *width, *height, g.Tick(), g.WispCount())
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
