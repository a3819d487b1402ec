package systems

import (
	"math/rand"
	"testing"
)

func testSpawnerParams() SpawnerParams {
	return SpawnerParams{
		MaxParticles:        50,
		SampleCells:         0,
		MaxPerTick:          0,
		ProbabilityScale:    1,
		ProbabilityExponent: 1,
		MaxProbability:      1,
		LifeMin:             2,
		LifeMax:             4,
		VelSpeedMin:         0.5,
		VelSpeedMax:         1,
		RadiusXY:            [2]float32{0.5, 1.0},
		RadiusZ:             [2]float32{0.05, 0.1},
		SpeedXY:             [2]float32{0.2, 0.5},
		SpeedZ:              [2]float32{0.3, 0.6},
	}
}

func TestSpawnerZeroPressureSpawnsNothing(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 8, H: 8, D: 1}, 1, 1)
	arena := NewSpriteArena(64)
	sp := NewParticleSpawner(testSpawnerParams(), rand.New(rand.NewSource(1)))

	for tick := 0; tick < 100; tick++ {
		if n := sp.Spawn(grid, arena); n != 0 {
			t.Fatalf("tick %d: spawned %d wisps on an empty field", tick, n)
		}
	}
}

func TestSpawnerRespectsCap(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 8, H: 8, D: 1}, 1, 1)
	for i := range grid.Pressure {
		grid.Pressure[i] = 5
	}
	p := testSpawnerParams()
	p.MaxParticles = 10
	arena := NewSpriteArena(p.MaxParticles)
	sp := NewParticleSpawner(p, rand.New(rand.NewSource(2)))

	for tick := 0; tick < 20; tick++ {
		sp.Spawn(grid, arena)
		if arena.Len() > p.MaxParticles {
			t.Fatalf("tick %d: %d wisps exceeds cap %d", tick, arena.Len(), p.MaxParticles)
		}
	}
	if arena.Len() != p.MaxParticles {
		t.Errorf("expected population to reach the cap, got %d", arena.Len())
	}
	if sp.SpawnAt(arena, Vec3{}, 1) != nil {
		t.Error("SpawnAt should refuse at the cap")
	}
}

func TestSpawnerMaxPerTick(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 8, H: 8, D: 1}, 1, 1)
	for i := range grid.Pressure {
		grid.Pressure[i] = 5
	}
	p := testSpawnerParams()
	p.MaxPerTick = 3
	sp := NewParticleSpawner(p, rand.New(rand.NewSource(3)))

	if n := sp.Spawn(grid, NewSpriteArena(64)); n != 3 {
		t.Errorf("spawned %d, want 3", n)
	}
}

func TestSpawnerParameterRanges(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 6, H: 6, D: 2}, 2, 3)
	for i := range grid.Pressure {
		grid.Pressure[i] = 3
	}
	p := testSpawnerParams()
	arena := NewSpriteArena(p.MaxParticles)
	sp := NewParticleSpawner(p, rand.New(rand.NewSource(4)))

	for arena.Len() < p.MaxParticles {
		sp.Spawn(grid, arena)
	}

	in := func(v float32, r [2]float32) bool { return v >= r[0] && v <= r[1] }
	size := grid.WorldSize()
	for i, s := range arena.Slots() {
		if s.Life < p.LifeMin || s.Life > p.LifeMax || s.Life != s.MaxLife {
			t.Errorf("sprite %d: life %v / max %v out of range", i, s.Life, s.MaxLife)
		}
		if !in(s.Radius.X, p.RadiusXY) || !in(s.Radius.Y, p.RadiusXY) || !in(s.Radius.Z, p.RadiusZ) {
			t.Errorf("sprite %d: radius %+v out of range", i, s.Radius)
		}
		if !in(s.AngSpeed.X, p.SpeedXY) || !in(s.AngSpeed.Y, p.SpeedXY) || !in(s.AngSpeed.Z, p.SpeedZ) {
			t.Errorf("sprite %d: angular speed %+v out of range", i, s.AngSpeed)
		}
		if s.VelSpeed < p.VelSpeedMin || s.VelSpeed > p.VelSpeedMax {
			t.Errorf("sprite %d: vel speed %v out of range", i, s.VelSpeed)
		}
		if s.Anchor.X < 0 || s.Anchor.X > size.X || s.Anchor.Y < 0 || s.Anchor.Y > size.Y || s.Anchor.Z < 0 || s.Anchor.Z > size.Z {
			t.Errorf("sprite %d: anchor %+v outside grid", i, s.Anchor)
		}
		if s.Visibility != 0 || s.State != StateSpawning {
			t.Errorf("sprite %d: should start invisible and spawning", i)
		}
	}
}

func TestSpawnerFavoursHighPressure(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 10, H: 4, D: 1}, 1, 1)
	for y := 0; y < 4; y++ {
		for x := 5; x < 10; x++ {
			grid.SetPressure(x, y, 0, 2)
		}
	}
	p := testSpawnerParams()
	p.MaxParticles = 40
	p.SampleCells = 8
	arena := NewSpriteArena(p.MaxParticles)
	sp := NewParticleSpawner(p, rand.New(rand.NewSource(5)))

	for tick := 0; tick < 200 && arena.Len() < p.MaxParticles; tick++ {
		sp.Spawn(grid, arena)
	}
	if arena.Len() == 0 {
		t.Fatal("expected wisps over the pressured half")
	}
	for _, s := range arena.Slots() {
		if s.Anchor.X < 5 {
			t.Fatalf("wisp spawned at %+v over a zero pressure cell", s.Anchor)
		}
	}
}

func TestSpawnerProbability(t *testing.T) {
	p := testSpawnerParams()
	p.ProbabilityScale = 0.1
	p.ProbabilityExponent = 2
	p.MaxProbability = 0.5
	sp := NewParticleSpawner(p, rand.New(rand.NewSource(6)))

	tests := []struct {
		pressure float32
		want     float32
	}{
		{0, 0},
		{-1, 0},
		{1, 0.1},
		{2, 0.4},
		{10, 0.5},
	}
	for _, tt := range tests {
		if got := sp.Probability(tt.pressure); got < tt.want-1e-6 || got > tt.want+1e-6 {
			t.Errorf("Probability(%v) = %v, want %v", tt.pressure, got, tt.want)
		}
	}
}

func TestSpawnerDeterministicWithSeed(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 8, H: 8, D: 1}, 1, 1)
	for i := range grid.Pressure {
		grid.Pressure[i] = 0.3
	}

	run := func() []Vec3 {
		arena := NewSpriteArena(64)
		sp := NewParticleSpawner(testSpawnerParams(), rand.New(rand.NewSource(42)))
		for tick := 0; tick < 10; tick++ {
			sp.Spawn(grid, arena)
		}
		out := make([]Vec3, 0, arena.Len())
		for _, s := range arena.Slots() {
			out = append(out, s.Anchor)
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs spawned %d and %d wisps", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("wisp %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSpawnerExhaustiveCapSpreadsSpatially(t *testing.T) {
	grid := NewFieldGrid(Extents{W: 20, H: 20, D: 1}, 1, 1)
	for i := range grid.Pressure {
		grid.Pressure[i] = 1
	}
	p := testSpawnerParams()
	p.MaxParticles = 1000
	p.MaxPerTick = 4
	arena := NewSpriteArena(p.MaxParticles)
	sp := NewParticleSpawner(p, rand.New(rand.NewSource(7)))

	for tick := 0; tick < 100; tick++ {
		sp.Spawn(grid, arena)
	}

	if arena.Len() != 400 {
		t.Fatalf("spawned %d wisps, want 400", arena.Len())
	}
	lower := 0
	for _, s := range arena.Slots() {
		if s.Anchor.Y >= 10 {
			lower++
		}
	}
	// Uniform pressure: about half the wisps belong in the lower half
	if lower < 100 || lower > 300 {
		t.Errorf("%d of 400 wisps in the lower half, want roughly 200", lower)
	}
}
