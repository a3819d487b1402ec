package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/game"
	"github.com/pthm-cable/miasma/renderer"
	"github.com/pthm-cable/miasma/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	layoutPath := flag.String("layout", "", "Path to a house layout (empty = config level.path, then the demo house)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output field stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config sim.seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	watch := flag.Bool("watch", false, "Reload config and layout when the files change")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Sim.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	levelPath := *layoutPath
	if levelPath == "" {
		levelPath = cfg.Level.Path
	}
	house, err := loadLayout(levelPath)
	if err != nil {
		slog.Error("failed to load layout", "path", levelPath, "error", err)
		os.Exit(1)
	}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Config:         cfg,
	})
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	if err := g.LoadHouse(house); err != nil {
		slog.Error("failed to load level", "error", err)
		os.Exit(1)
	}

	var rel *reloader
	if *watch {
		rel, err = newReloader(*configPath, levelPath)
		if err != nil {
			slog.Error("failed to watch files", "error", err)
			os.Exit(1)
		}
		defer rel.Close()
	}

	if *headless {
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"layout", house.Name(),
			"max_ticks", *maxTicks,
		)
		for {
			rel.Poll(g)
			g.Update()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick(), "wisps", g.WispCount())
				return
			}
		}
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Miasma")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	view := renderer.NewView("Miasma", int32(cfg.Screen.Width), int32(cfg.Screen.Height), float32(cfg.Solver.MaxPressure))
	defer view.Unload()

	for !rl.WindowShouldClose() {
		rel.Poll(g)
		view.HandleInput(g)
		for i := 0; i < view.Speed(); i++ {
			g.Update()
		}
		g.Perf().RecordFrame()

		rl.BeginDrawing()
		view.Draw(g)
		rl.EndDrawing()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}

// loadLayout reads the house at path, or the demo house when path is empty.
func loadLayout(path string) (*systems.HouseLayout, error) {
	if path == "" {
		return systems.DemoHouseLayout(), nil
	}
	return systems.LoadHouseLayout(path)
}

// reloader applies config and layout edits between ticks. A nil reloader
// does nothing.
type reloader struct {
	watcher    *config.Watcher
	configPath string
	layoutPath string
}

func newReloader(configPath, layoutPath string) (*reloader, error) {
	w, err := config.NewWatcher(configPath, layoutPath)
	if err != nil {
		return nil, err
	}
	return &reloader{
		watcher:    w,
		configPath: filepath.Clean(configPath),
		layoutPath: filepath.Clean(layoutPath),
	}, nil
}

// Poll drains pending file events without blocking.
func (r *reloader) Poll(g *game.Game) {
	if r == nil {
		return
	}
	for {
		select {
		case path, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.reload(g, path)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watch error", "error", err)
		default:
			return
		}
	}
}

func (r *reloader) reload(g *game.Game, path string) {
	switch path {
	case r.configPath:
		cfg, err := config.Load(path)
		if err != nil {
			slog.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if err := g.ApplyTuning(cfg); err != nil {
			slog.Warn("config reload failed", "path", path, "error", err)
		}
	case r.layoutPath:
		house, err := systems.LoadHouseLayout(path)
		if err != nil {
			slog.Warn("layout reload rejected", "path", path, "error", err)
			return
		}
		if err := g.LoadHouse(house); err != nil {
			slog.Warn("layout reload failed", "path", path, "error", err)
		}
	}
}

func (r *reloader) Close() {
	if r != nil {
		_ = r.watcher.Close()
	}
}
