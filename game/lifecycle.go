package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/systems"
)

// OnLevelLoaded allocates a grid for level and binds the solver to it. Any
// previously loaded level is unloaded first. A nil table gives every room the
// default modifier.
func (g *Game) OnLevelLoaded(level systems.Level, table *systems.RoomModifierTable) error {
	if level == nil {
		return fmt.Errorf("loading level: nil level")
	}
	ext := level.Extents()
	if !ext.Valid() {
		return fmt.Errorf("loading level: invalid extents %dx%dx%d", ext.W, ext.H, ext.D)
	}
	if g.loaded {
		g.OnLevelUnloaded()
	}
	if table == nil {
		table = systems.NewRoomModifierTable(nil)
	}

	g.level = level
	g.table = table
	g.grid = systems.NewFieldGrid(ext, level.CellSize(), level.BandHeight())
	g.lights = systems.NewLightMapFor(g.grid)
	if g.useLights {
		g.vis = g.lights
	}
	g.solver.Bind(g.grid, level, table)
	g.collector.Reset(g.tick)
	g.perf.Reset()
	g.loaded = true

	emitters := 0
	if src, ok := level.(systems.EmitterSource); ok {
		emitters = len(src.Emitters())
	}
	slog.Info("level loaded",
		"width", ext.W,
		"height", ext.H,
		"floors", ext.D,
		"rooms", table.Len(),
		"emitters", emitters,
	)
	if !g.cfg.Solver.Enabled {
		slog.Warn("field solver disabled, field will stay static")
	}
	return nil
}

// LoadHouse loads a house layout with the modifiers it declares.
func (g *Game) LoadHouse(h *systems.HouseLayout) error {
	return g.OnLevelLoaded(h, systems.LoadRoomModifiers(h.Modifiers()))
}

// OnLevelUnloaded force-despawns every wisp, empties the render registry and
// drops the grid. Safe to call with no level loaded.
func (g *Game) OnLevelUnloaded() {
	g.arena.DespawnAll()
	removed := g.arena.Sweep(g.removeWisp)

	// Entities not tracked by a sprite would otherwise outlive the level
	var stray []ecs.Entity
	query := g.wispFilter.Query()
	for query.Next() {
		stray = append(stray, query.Entity())
	}
	for _, e := range stray {
		g.world.RemoveEntity(e)
	}

	if g.grid != nil {
		g.grid.Reset()
	}
	g.solver.Unbind()
	g.grid = nil
	g.level = nil
	g.table = nil
	g.lights = nil
	if g.useLights {
		g.vis = systems.FullVisibility
	}
	wasLoaded := g.loaded
	g.loaded = false

	if wasLoaded {
		slog.Info("level unloaded", "despawned", removed, "stray_entities", len(stray))
	}
}

// ApplyTuning swaps in new solver, spawner and animator parameters. Takes
// effect on the next step.
func (g *Game) ApplyTuning(cfg *config.Config) error {
	noise, err := systems.NewNoise(cfg.Noise.Kind, cfg.Noise.Seed)
	if err != nil {
		return fmt.Errorf("applying tuning: %w", err)
	}
	wasEnabled := g.cfg.Solver.Enabled

	g.cfg = cfg
	g.solver.SetParams(systems.SolverParamsFromConfig(cfg))
	g.spawner.SetParams(systems.SpawnerParamsFromConfig(cfg))
	g.animator.SetParams(systems.AnimatorParamsFromConfig(cfg))
	g.animator.SetNoise(noise)

	slog.Info("tuning applied",
		"diffusion_rate", cfg.Solver.DiffusionRate,
		"decay_rate", cfg.Solver.DecayRate,
		"max_velocity", cfg.Solver.MaxVelocity,
		"max_particles", cfg.Spawner.MaxParticles,
	)
	if wasEnabled && !cfg.Solver.Enabled {
		slog.Warn("field solver disabled, field will stay static")
	}
	return nil
}
