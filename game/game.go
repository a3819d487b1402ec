// Package game owns the miasma engine: the field, the wisps and the render
// registry, stepped once per tick by the host.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/miasma/components"
	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/systems"
	"github.com/pthm-cable/miasma/telemetry"
)

// Options configures a new Game.
type Options struct {
	Seed           int64  // RNG seed for spawning
	LogStats       bool   // log windowed field stats via slog
	StatsWindowSec float64
	OutputDir      string // CSV output directory, empty = disabled
	Config         *config.Config

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.FieldStats)
}

// RenderTransform is what the renderer needs to draw one wisp.
type RenderTransform struct {
	Pos         systems.Vec3
	Opacity     float32
	Orientation float32
}

// Game holds the complete engine state.
type Game struct {
	cfg *config.Config
	rng *rand.Rand

	// Render registry: one entity per live wisp
	world      *ecs.World
	wispMapper *ecs.Map4[
		components.Position,
		components.Opacity,
		components.Orientation,
		components.Wisp,
	]
	wispFilter *ecs.Filter4[
		components.Position,
		components.Opacity,
		components.Orientation,
		components.Wisp,
	]

	// Level state, nil until OnLevelLoaded
	level     systems.Level
	grid      *systems.FieldGrid
	table     *systems.RoomModifierTable
	lights    *systems.LightMap
	vis       systems.VisibilitySource
	useLights bool // vis follows the current level's light map
	loaded    bool

	solver   *systems.FieldSolver
	spawner  *systems.ParticleSpawner
	animator *systems.ParticleAnimator
	arena    *systems.SpriteArena
	registry *systems.SystemRegistry

	parallel *parallelState

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool
	onStats   func(telemetry.FieldStats)

	tick   int32
	paused bool
}

// NewGameWithOptions creates an engine with no level loaded.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	noise, err := systems.NewNoise(cfg.Noise.Kind, cfg.Noise.Seed)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		world: world,
		wispMapper: ecs.NewMap4[
			components.Position,
			components.Opacity,
			components.Orientation,
			components.Wisp,
		](world),
		wispFilter: ecs.NewFilter4[
			components.Position,
			components.Opacity,
			components.Orientation,
			components.Wisp,
		](world),
		registry: systems.NewSystemRegistry(),
		logStats: opts.LogStats,
		onStats:  opts.StatsCallback,
		vis:      systems.FullVisibility,
	}

	g.solver = systems.NewFieldSolver(systems.SolverParamsFromConfig(cfg))
	g.spawner = systems.NewParticleSpawner(systems.SpawnerParamsFromConfig(cfg), g.rng)
	g.animator = systems.NewParticleAnimator(systems.AnimatorParamsFromConfig(cfg), noise)
	g.arena = systems.NewSpriteArena(cfg.Spawner.MaxParticles)
	g.parallel = newParallelState()

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)

	g.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	return g, nil
}

// Tick returns the number of steps run since the engine was created.
func (g *Game) Tick() int32 {
	return g.tick
}

// Loaded reports whether a level is bound.
func (g *Game) Loaded() bool {
	return g.loaded
}

// Grid returns the field grid, or nil when no level is loaded. Callers must
// treat it as read-only.
func (g *Game) Grid() *systems.FieldGrid {
	return g.grid
}

// Level returns the bound level, or nil.
func (g *Game) Level() systems.Level {
	return g.level
}

// Lights returns the level's light map, or nil when no level is loaded.
func (g *Game) Lights() *systems.LightMap {
	return g.lights
}

// WispCount returns the number of live wisps.
func (g *Game) WispCount() int {
	return g.arena.Len()
}

// Wisps exposes the live wisps read-only between steps.
func (g *Game) Wisps() []systems.MiasmaSprite {
	return g.arena.Slots()
}

// Perf returns the perf collector.
func (g *Game) Perf() *telemetry.PerfCollector {
	return g.perf
}

// Registry returns the system metadata used to label perf phases.
func (g *Game) Registry() *systems.SystemRegistry {
	return g.registry
}

// Config returns the config the engine is running with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// SetPaused stops or resumes Update. Step always runs.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// Paused reports whether Update is skipping steps.
func (g *Game) Paused() bool {
	return g.paused
}

// SetVisibility replaces the visibility source. nil restores full visibility.
// Overrides UseLightMap.
func (g *Game) SetVisibility(v systems.VisibilitySource) {
	if v == nil {
		v = systems.FullVisibility
	}
	g.useLights = false
	g.vis = v
}

// Visibility returns the current visibility source.
func (g *Game) Visibility() systems.VisibilitySource {
	return g.vis
}

// Update runs one step unless paused. For graphical hosts.
func (g *Game) Update() {
	if g.paused {
		return
	}
	g.Step()
}

// Unload stops workers and closes output files.
func (g *Game) Unload() {
	g.parallel.stopWorkers()
	if g.loaded {
		g.OnLevelUnloaded()
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
