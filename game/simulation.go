package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/miasma/components"
	"github.com/pthm-cable/miasma/systems"
	"github.com/pthm-cable/miasma/telemetry"
)

// Step runs one fixed tick: solver, spawner, animator, sweep, render sync,
// telemetry. Does nothing while no level is loaded.
func (g *Game) Step() {
	if !g.loaded {
		return
	}
	dt := g.cfg.Derived.DT32

	g.perf.StartTick()

	if g.cfg.Solver.Enabled {
		g.perf.StartPhase(telemetry.PhaseFieldSolver)
		g.solver.Step(g.grid, dt)
		if inflow := g.solver.InflowRate() * dt; inflow > 0 {
			g.collector.Record(telemetry.NewInflowEvent(g.tick, inflow))
		}
	}

	g.perf.StartPhase(telemetry.PhaseSpawner)
	before := g.arena.Len()
	if g.spawner.Spawn(g.grid, g.arena) > 0 {
		for _, s := range g.arena.Slots()[before:] {
			g.collector.Record(telemetry.NewSpawnEvent(g.tick, s.ID))
		}
	}

	g.perf.StartPhase(telemetry.PhaseAnimator)
	g.advanceWisps(dt)

	// Removal only after every sprite has been advanced
	g.perf.StartPhase(telemetry.PhaseSweep)
	g.arena.Sweep(g.removeWisp)

	g.perf.StartPhase(telemetry.PhaseRenderSync)
	g.syncRenderRegistry()

	g.tick++

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perf.EndTick()
}

// advanceWisps updates every live wisp, split across the worker pool once
// the population passes the configured threshold.
func (g *Game) advanceWisps(dt float32) {
	slots := g.arena.Slots()
	threshold := g.cfg.Animator.ParallelThreshold
	if threshold <= 0 || len(slots) < threshold || g.parallel.numWorkers < 2 {
		g.animator.AdvanceRange(g.grid, g.vis, slots, dt)
		return
	}
	g.parallel.run(g, slots, dt)
}

// SpawnWispAt places a wisp directly, bypassing the pressure roll. Returns
// the wisp ID, or false when no level is loaded or the cap is reached.
func (g *Game) SpawnWispAt(anchor systems.Vec3, life float32) (uint32, bool) {
	if !g.loaded {
		return 0, false
	}
	s := g.spawner.SpawnAt(g.arena, g.grid.ClampPosition(anchor), life)
	if s == nil {
		return 0, false
	}
	g.collector.Record(telemetry.NewSpawnEvent(g.tick, s.ID))
	return s.ID, true
}

// DespawnWisp flags a wisp for removal on the next step.
func (g *Game) DespawnWisp(id uint32) bool {
	s := g.arena.Find(id)
	if s == nil {
		return false
	}
	s.Despawn = true
	return true
}

// Wisp returns a copy of the live wisp with the given ID.
func (g *Game) Wisp(id uint32) (systems.MiasmaSprite, bool) {
	s := g.arena.Find(id)
	if s == nil {
		return systems.MiasmaSprite{}, false
	}
	return *s, true
}

// removeWisp is the sweep callback: it drops the render entity and records
// the removal. Called outside any ECS query.
func (g *Game) removeWisp(s *systems.MiasmaSprite) {
	if s.Entity != (ecs.Entity{}) && g.world.Alive(s.Entity) {
		g.world.RemoveEntity(s.Entity)
	}
	s.Entity = ecs.Entity{}
	g.collector.Record(telemetry.NewRemoveEvent(g.tick, s.ID, s.Despawn))
}

// syncRenderRegistry mirrors every live wisp into the ECS world, creating
// entities for wisps spawned this tick.
func (g *Game) syncRenderRegistry() {
	slots := g.arena.Slots()
	for i := range slots {
		s := &slots[i]
		if s.Entity == (ecs.Entity{}) {
			pos := components.Position{X: s.Pos.X, Y: s.Pos.Y, Z: s.Pos.Z}
			op := components.Opacity{Value: s.Visibility}
			or := components.Orientation{Heading: s.Orientation}
			w := components.Wisp{SpriteID: s.ID, Fading: s.State == systems.StateFading}
			s.Entity = g.wispMapper.NewEntity(&pos, &op, &or, &w)
			continue
		}
		pos, op, or, w := g.wispMapper.Get(s.Entity)
		pos.X, pos.Y, pos.Z = s.Pos.X, s.Pos.Y, s.Pos.Z
		op.Value = s.Visibility
		or.Heading = s.Orientation
		w.Fading = s.State == systems.StateFading
	}
}

// RenderTransforms appends the transform of every render entity to dst[:0].
func (g *Game) RenderTransforms(dst []RenderTransform) []RenderTransform {
	dst = dst[:0]
	query := g.wispFilter.Query()
	for query.Next() {
		pos, op, or, _ := query.Get()
		dst = append(dst, RenderTransform{
			Pos:         systems.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
			Opacity:     op.Value,
			Orientation: or.Heading,
		})
	}
	return dst
}

// UseLightMap switches visibility to the level's light map, or back to full
// visibility when on is false. The choice carries over level reloads.
func (g *Game) UseLightMap(on bool) {
	g.useLights = on
	if on && g.lights != nil {
		g.vis = g.lights
		return
	}
	g.vis = systems.FullVisibility
}

// RevealAt lights the area around p, as a stand-in for the player's light.
func (g *Game) RevealAt(p systems.Vec3, radius, strength float32) {
	if g.lights != nil {
		g.lights.Reveal(p, radius, strength)
	}
}
