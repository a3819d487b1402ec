package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/miasma/config"
)

// SpawnerParams control where and how often wisps appear.
type SpawnerParams struct {
	MaxParticles        int
	SampleCells         int // cells tested per tick; <=0 tests every cell
	MaxPerTick          int
	ProbabilityScale    float32
	ProbabilityExponent float32
	MaxProbability      float32

	LifeMin, LifeMax         float32
	VelSpeedMin, VelSpeedMax float32
	RadiusXY, RadiusZ        [2]float32
	SpeedXY, SpeedZ          [2]float32
}

// SpawnerParamsFromConfig reads spawner parameters from cfg.
func SpawnerParamsFromConfig(cfg *config.Config) SpawnerParams {
	c := cfg.Spawner
	p := SpawnerParams{
		MaxParticles:        c.MaxParticles,
		SampleCells:         c.SampleCells,
		MaxPerTick:          c.MaxPerTick,
		ProbabilityScale:    float32(c.ProbabilityScale),
		ProbabilityExponent: float32(c.ProbabilityExponent),
		MaxProbability:      float32(c.MaxProbability),
	}
	p.LifeMin, p.LifeMax = c.Life.F32()
	p.VelSpeedMin, p.VelSpeedMax = c.VelSpeed.F32()
	p.RadiusXY[0], p.RadiusXY[1] = c.RadiusXY.F32()
	p.RadiusZ[0], p.RadiusZ[1] = c.RadiusZ.F32()
	p.SpeedXY[0], p.SpeedXY[1] = c.SpeedXY.F32()
	p.SpeedZ[0], p.SpeedZ[1] = c.SpeedZ.F32()
	return p
}

// ParticleSpawner creates wisps in proportion to local pressure.
type ParticleSpawner struct {
	params SpawnerParams
	rng    *rand.Rand
}

// NewParticleSpawner creates a spawner drawing from rng. Tests should pass a
// seeded source.
func NewParticleSpawner(p SpawnerParams, rng *rand.Rand) *ParticleSpawner {
	return &ParticleSpawner{params: p, rng: rng}
}

// SetParams replaces the spawn parameters.
func (s *ParticleSpawner) SetParams(p SpawnerParams) {
	s.params = p
}

// Params returns the current spawn parameters.
func (s *ParticleSpawner) Params() SpawnerParams {
	return s.params
}

// Probability maps a cell pressure to a spawn chance for one tick.
func (s *ParticleSpawner) Probability(pressure float32) float32 {
	if pressure <= 0 {
		return 0
	}
	p := s.params
	exp := p.ProbabilityExponent
	if exp <= 0 {
		exp = 1
	}
	prob := p.ProbabilityScale * float32(math.Pow(float64(pressure), float64(exp)))
	return clampFloat(prob, 0, clamp01(p.MaxProbability))
}

// Spawn runs once per tick and returns how many wisps were created.
// Best effort: it does nothing once the population cap is reached.
func (s *ParticleSpawner) Spawn(grid *FieldGrid, arena *SpriteArena) int {
	p := s.params
	if arena.Len() >= p.MaxParticles {
		return 0
	}

	n := grid.Ext.Cells()
	samples := p.SampleCells
	exhaustive := samples <= 0 || samples >= n
	// Exhaustive passes start at a random cell so a per-tick cap does not
	// favour low indices
	start := 0
	if exhaustive {
		samples = n
		start = s.rng.Intn(n)
	}

	spawned := 0
	for k := 0; k < samples; k++ {
		if arena.Len() >= p.MaxParticles || (p.MaxPerTick > 0 && spawned >= p.MaxPerTick) {
			break
		}

		i := (start + k) % n
		if !exhaustive {
			i = s.rng.Intn(n)
		}
		pressure := grid.Pressure[i]
		if pressure <= 0 {
			continue
		}
		if s.rng.Float32() >= s.Probability(pressure) {
			continue
		}

		x, y, z := grid.Coords(i)
		anchor := Vec3{
			X: (float32(x) + s.rng.Float32()) * grid.CellSize,
			Y: (float32(y) + s.rng.Float32()) * grid.CellSize,
			Z: (float32(z) + s.rng.Float32()) * grid.BandHeight,
		}
		s.add(arena, anchor, randRange(s.rng.Float32, p.LifeMin, p.LifeMax))
		spawned++
	}
	return spawned
}

// SpawnAt places a wisp at anchor with the given life, ignoring pressure but
// not the population cap. Returns nil when the cap is reached.
func (s *ParticleSpawner) SpawnAt(arena *SpriteArena, anchor Vec3, life float32) *MiasmaSprite {
	if arena.Len() >= s.params.MaxParticles {
		return nil
	}
	return s.add(arena, anchor, life)
}

func (s *ParticleSpawner) add(arena *SpriteArena, anchor Vec3, life float32) *MiasmaSprite {
	p := s.params
	r := s.rng.Float32
	const twoPi = 2 * math.Pi

	sprite := MiasmaSprite{
		Anchor: anchor,
		Radius: Vec3{
			X: randRange(r, p.RadiusXY[0], p.RadiusXY[1]),
			Y: randRange(r, p.RadiusXY[0], p.RadiusXY[1]),
			Z: randRange(r, p.RadiusZ[0], p.RadiusZ[1]),
		},
		AngSpeed: Vec3{
			X: randRange(r, p.SpeedXY[0], p.SpeedXY[1]),
			Y: randRange(r, p.SpeedXY[0], p.SpeedXY[1]),
			Z: randRange(r, p.SpeedZ[0], p.SpeedZ[1]),
		},
		Phase: Vec3{
			X: r() * twoPi,
			Y: r() * twoPi,
			Z: r() * twoPi,
		},
		NoiseOffX: r() * 1000,
		NoiseOffY: r() * 1000,
		Life:      life,
		MaxLife:   life,
		VelSpeed:  randRange(r, p.VelSpeedMin, p.VelSpeedMax),
		Pos:       anchor,
		State:     StateSpawning,
	}
	return arena.Add(sprite)
}
