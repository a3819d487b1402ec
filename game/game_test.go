package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/systems"
	"github.com/pthm-cable/miasma/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Spawner.MaxParticles = 200
	cfg.Spawner.ProbabilityScale = 0.5
	cfg.Telemetry.StatsWindow = 0.1
	return cfg
}

func testHouse(t *testing.T) *systems.HouseLayout {
	t.Helper()
	h, err := systems.NewHouseLayout(systems.HouseFile{
		Name:   "test_house",
		Width:  12,
		Height: 8,
		Floors: 2,
		Rooms: []systems.RoomSpec{
			{ID: "cellar", Floor: 0, Rect: [4]int{0, 0, 6, 8}, Modifier: 0.1},
			{ID: "porch", Floor: 0, Rect: [4]int{6, 0, 12, 8}, Modifier: 2},
			{ID: "attic", Floor: 1, Rect: [4]int{0, 0, 12, 8}},
		},
		Emitters: []systems.EmitterSpec{
			{Room: "cellar", Cell: [3]float32{2.5, 4.5, 0.5}, Rate: 40},
		},
	})
	require.NoError(t, err)
	return h
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	opts.Config = cfg
	g, err := NewGameWithOptions(opts)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

func TestStepWithoutLevelIsNoop(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 1})

	for i := 0; i < 10; i++ {
		g.Step()
	}

	assert.Equal(t, int32(0), g.Tick())
	assert.Nil(t, g.Grid())
	assert.Empty(t, g.RenderTransforms(nil))
}

func TestLevelLifecycle(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 2})
	require.NoError(t, g.LoadHouse(testHouse(t)))
	require.True(t, g.Loaded())

	for i := 0; i < 300; i++ {
		g.Step()
	}

	require.Greater(t, g.WispCount(), 0, "emitter pressure should produce wisps")
	transforms := g.RenderTransforms(nil)
	assert.Len(t, transforms, g.WispCount(), "one render entity per live wisp")
	for _, tr := range transforms {
		assert.GreaterOrEqual(t, tr.Opacity, float32(0))
		assert.LessOrEqual(t, tr.Opacity, float32(1))
	}

	g.OnLevelUnloaded()

	assert.False(t, g.Loaded())
	assert.Equal(t, 0, g.WispCount())
	assert.Empty(t, g.RenderTransforms(nil))
	assert.Nil(t, g.Grid())

	tick := g.Tick()
	g.Step()
	assert.Equal(t, tick, g.Tick(), "no ticks without a level")
}

func TestReloadReplacesGrid(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 3})
	require.NoError(t, g.LoadHouse(testHouse(t)))
	for i := 0; i < 50; i++ {
		g.Step()
	}
	first := g.Grid()

	require.NoError(t, g.LoadHouse(systems.DemoHouseLayout()))

	assert.NotSame(t, first, g.Grid())
	assert.Equal(t, 32, g.Grid().Ext.W)
	assert.Equal(t, float32(0), g.Grid().TotalPressure())
	assert.Equal(t, 0, g.WispCount())
}

func TestOnLevelLoadedRejectsBadLevel(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 4})
	assert.Error(t, g.OnLevelLoaded(nil, nil))
	assert.False(t, g.Loaded())
}

func TestWispLifetimeThroughEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spawner.ProbabilityScale = 0
	cfg.Animator.LifeDecay = 1
	g := newTestGame(t, cfg, Options{Seed: 5})
	require.NoError(t, g.LoadHouse(testHouse(t)))

	id, ok := g.SpawnWispAt(systems.Vec3{}, 5)
	require.True(t, ok)

	for i := 0; i < 4; i++ {
		g.Step()
	}
	w, ok := g.Wisp(id)
	require.True(t, ok, "wisp should survive four ticks")
	assert.InDelta(t, 1.0, w.Life, 1e-5)
	assert.Len(t, g.RenderTransforms(nil), 1)

	g.Step()
	_, ok = g.Wisp(id)
	assert.False(t, ok, "wisp should be removed on the fifth tick")
	assert.Empty(t, g.RenderTransforms(nil))
}

func TestDespawnWisp(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spawner.ProbabilityScale = 0
	g := newTestGame(t, cfg, Options{Seed: 6})
	require.NoError(t, g.LoadHouse(testHouse(t)))

	id, ok := g.SpawnWispAt(systems.Vec3{X: 3, Y: 3}, 100)
	require.True(t, ok)
	g.Step()
	require.Len(t, g.RenderTransforms(nil), 1)

	require.True(t, g.DespawnWisp(id))
	g.Step()

	assert.Equal(t, 0, g.WispCount())
	assert.Empty(t, g.RenderTransforms(nil))
	assert.False(t, g.DespawnWisp(id))
}

func TestParallelUpdateMatchesSerial(t *testing.T) {
	run := func(threshold int) []systems.MiasmaSprite {
		cfg := testConfig(t)
		cfg.Animator.ParallelThreshold = threshold
		g := newTestGame(t, cfg, Options{Seed: 7})
		require.NoError(t, g.LoadHouse(testHouse(t)))
		for i := 0; i < 200; i++ {
			g.Step()
		}
		return append([]systems.MiasmaSprite(nil), g.Wisps()...)
	}

	serial := run(0)
	parallel := run(1)

	require.Equal(t, len(serial), len(parallel))
	for i := range serial {
		assert.Equal(t, serial[i].ID, parallel[i].ID)
		assert.Equal(t, serial[i].Pos, parallel[i].Pos, "wisp %d", serial[i].ID)
		assert.Equal(t, serial[i].Visibility, parallel[i].Visibility)
	}
}

func TestDisabledSolverKeepsFieldStatic(t *testing.T) {
	cfg := testConfig(t)
	cfg.Solver.Enabled = false
	g := newTestGame(t, cfg, Options{Seed: 8})
	require.NoError(t, g.LoadHouse(testHouse(t)))

	for i := 0; i < 60; i++ {
		g.Step()
	}

	assert.Equal(t, float32(0), g.Grid().TotalPressure())
	assert.Equal(t, 0, g.WispCount())
	assert.Equal(t, int32(60), g.Tick(), "spawner and animator still tick")
}

func TestApplyTuning(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 9})

	bad := testConfig(t)
	bad.Noise.Kind = "worley"
	assert.Error(t, g.ApplyTuning(bad))

	next := testConfig(t)
	next.Solver.DiffusionRate = 0.4
	next.Spawner.MaxParticles = 3
	require.NoError(t, g.ApplyTuning(next))
	require.NoError(t, g.LoadHouse(testHouse(t)))

	for i := 0; i < 300; i++ {
		g.Step()
	}

	assert.InDelta(t, 0.4, g.solver.Params().DiffusionRate, 1e-6)
	assert.LessOrEqual(t, g.WispCount(), 3)
}

func TestLightMapDrivesVisibility(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spawner.ProbabilityScale = 0
	g := newTestGame(t, cfg, Options{Seed: 10})
	require.NoError(t, g.LoadHouse(testHouse(t)))
	g.UseLightMap(true)

	dark, _ := g.SpawnWispAt(systems.Vec3{X: 1, Y: 1, Z: 0.5}, 10)
	g.RevealAt(systems.Vec3{X: 10, Y: 6, Z: 0.5}, 3, 1)
	lit, _ := g.SpawnWispAt(systems.Vec3{X: 10, Y: 6, Z: 0.5}, 10)

	for i := 0; i < 240; i++ {
		g.Step()
	}

	d, ok := g.Wisp(dark)
	require.True(t, ok)
	l, ok := g.Wisp(lit)
	require.True(t, ok)
	assert.Greater(t, l.Visibility, d.Visibility)
}

func TestLightMapFollowsReload(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 14})
	house := testHouse(t)
	require.NoError(t, g.LoadHouse(house))
	g.UseLightMap(true)
	first := g.Lights()

	require.NoError(t, g.LoadHouse(house))
	require.NotSame(t, first, g.Lights())

	p := systems.Vec3{X: 3, Y: 3, Z: 0.5}
	g.RevealAt(p, 2, 1)
	assert.Greater(t, g.Lights().VisibilityAt(p), float32(0))
	assert.Equal(t, g.Lights().VisibilityAt(p), g.Visibility().VisibilityAt(p),
		"visibility should sample the reloaded level's light map")

	g.OnLevelUnloaded()
	assert.Equal(t, float32(1), g.Visibility().VisibilityAt(p))
}

func TestSetVisibilityOverridesLightMap(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spawner.ProbabilityScale = 0
	g := newTestGame(t, cfg, Options{Seed: 15})
	require.NoError(t, g.LoadHouse(testHouse(t)))
	g.UseLightMap(true)

	dim := systems.VisibilityFunc(func(systems.Vec3) float32 { return 0.25 })
	g.SetVisibility(dim)
	id, ok := g.SpawnWispAt(systems.Vec3{X: 4, Y: 4, Z: 0.5}, 10)
	require.True(t, ok)

	for i := 0; i < 240; i++ {
		g.Step()
	}
	w, ok := g.Wisp(id)
	require.True(t, ok)
	assert.LessOrEqual(t, w.Visibility, float32(0.25)+1e-6)
	assert.Greater(t, w.Visibility, float32(0))

	// An external source survives reloads, the light map toggle does not
	require.NoError(t, g.LoadHouse(testHouse(t)))
	assert.Equal(t, float32(0.25), g.Visibility().VisibilityAt(systems.Vec3{}))

	g.SetVisibility(nil)
	assert.Equal(t, float32(1), g.Visibility().VisibilityAt(systems.Vec3{}))
}

func TestOutputDirWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	g := newTestGame(t, testConfig(t), Options{Seed: 11, OutputDir: dir})
	require.NoError(t, g.LoadHouse(testHouse(t)))

	for i := 0; i < 30; i++ {
		g.Step()
	}

	for _, name := range []string{"field.csv", "perf.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestProbe(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spawner.ProbabilityScale = 0
	cfg.Spawner.RadiusXY = config.Range{0.1, 0.2}
	cfg.Animator.NoiseAmplitude = 0
	g := newTestGame(t, cfg, Options{Seed: 12})

	_, ok := g.Probe(systems.Vec3{})
	assert.False(t, ok, "probe without a level")

	require.NoError(t, g.LoadHouse(testHouse(t)))
	_, ok = g.SpawnWispAt(systems.Vec3{X: 9, Y: 4, Z: 0.5}, 10)
	require.True(t, ok)
	g.Step()

	porch, ok := g.Probe(systems.Vec3{X: 9.2, Y: 4.1, Z: 0.5})
	require.True(t, ok)
	assert.Equal(t, systems.RoomID("porch"), porch.Room)
	assert.InDelta(t, 2.0, porch.Modifier, 1e-6)
	assert.Equal(t, 9, porch.X)
	assert.Equal(t, 0, porch.Z)
	assert.Equal(t, 1, porch.NearWisps)

	cellar, ok := g.Probe(systems.Vec3{X: 2.5, Y: 4.5, Z: 0.5})
	require.True(t, ok)
	assert.Greater(t, cellar.Pressure, float32(0), "emitter cell holds pressure")
	assert.Zero(t, cellar.NearWisps)

	upstairs, ok := g.Probe(systems.Vec3{X: 9.2, Y: 4.1, Z: 1.5})
	require.True(t, ok)
	assert.Equal(t, systems.RoomID("attic"), upstairs.Room)
	assert.Zero(t, upstairs.NearWisps)
}

func TestRoomsAndModifiers(t *testing.T) {
	g := newTestGame(t, testConfig(t), Options{Seed: 13})
	assert.Nil(t, g.Rooms())

	require.NoError(t, g.LoadHouse(testHouse(t)))
	rooms := g.Rooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, systems.RoomID("attic"), rooms[2].ID)
	assert.InDelta(t, 0.1, g.Modifiers().ModifierFor("cellar"), 1e-6)
	assert.InDelta(t, systems.DefaultModifier, g.Modifiers().ModifierFor("attic"), 1e-6)
}

func TestStatsCallbackReceivesWindows(t *testing.T) {
	var windows []telemetry.FieldStats
	g := newTestGame(t, testConfig(t), Options{
		Seed:          14,
		StatsCallback: func(s telemetry.FieldStats) { windows = append(windows, s) },
	})
	require.NoError(t, g.LoadHouse(testHouse(t)))

	for i := 0; i < 30; i++ {
		g.Step()
	}

	require.NotEmpty(t, windows)
	last := windows[len(windows)-1]
	assert.Greater(t, last.TotalPressure, 0.0)
	assert.Greater(t, last.Inflow, 0.0)
	assert.Equal(t, g.WispCount(), last.LiveWisps)
}
