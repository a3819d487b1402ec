package systems

import (
	"math"

	"github.com/pthm-cable/miasma/config"
)

// AnimatorParams control wisp motion, fading and lifetime.
type AnimatorParams struct {
	LifeDecay          float32 // life removed per tick
	FadeIn             float32 // fraction of life spent fading in
	FadeOut            float32 // final fraction of life spent fading out
	VisibilityRate     float32 // max visibility change per second
	NoiseAmplitude     float32
	NoiseScale         float32
	NoiseSpeed         float32
	DirectionSmoothing float32 // weight of the newest drift sample, [0,1]
}

// AnimatorParamsFromConfig reads animator parameters from cfg.
func AnimatorParamsFromConfig(cfg *config.Config) AnimatorParams {
	c := cfg.Animator
	return AnimatorParams{
		LifeDecay:          float32(c.LifeDecay),
		FadeIn:             float32(c.FadeIn),
		FadeOut:            float32(c.FadeOut),
		VisibilityRate:     float32(c.VisibilityRate),
		NoiseAmplitude:     float32(c.NoiseAmplitude),
		NoiseScale:         float32(c.NoiseScale),
		NoiseSpeed:         float32(c.NoiseSpeed),
		DirectionSmoothing: float32(c.DirectionSmoothing),
	}
}

// ParticleAnimator moves, fades and expires wisps. It only reads the grid.
type ParticleAnimator struct {
	params AnimatorParams
	noise  Noise2
}

// NewParticleAnimator creates an animator sampling the given noise.
func NewParticleAnimator(p AnimatorParams, noise Noise2) *ParticleAnimator {
	return &ParticleAnimator{params: p, noise: noise}
}

// SetParams replaces the animation parameters.
func (a *ParticleAnimator) SetParams(p AnimatorParams) {
	a.params = p
}

// SetNoise replaces the jitter noise. nil disables jitter.
func (a *ParticleAnimator) SetNoise(n Noise2) {
	a.noise = n
}

// Params returns the current animation parameters.
func (a *ParticleAnimator) Params() AnimatorParams {
	return a.params
}

// Update advances every sprite, then sweeps expired ones out of the arena.
// Removal happens only in the sweep so the update pass never sees the arena
// change under it. Returns the number removed.
func (a *ParticleAnimator) Update(grid *FieldGrid, vis VisibilitySource, arena *SpriteArena, dt float32, onRemove func(*MiasmaSprite)) int {
	a.AdvanceRange(grid, vis, arena.Slots(), dt)
	return arena.Sweep(onRemove)
}

// AdvanceRange advances a slice of sprites. Disjoint slices may be advanced
// concurrently: each call only writes its own sprites.
func (a *ParticleAnimator) AdvanceRange(grid *FieldGrid, vis VisibilitySource, sprites []MiasmaSprite, dt float32) {
	if vis == nil {
		vis = FullVisibility
	}
	for i := range sprites {
		a.Advance(grid, vis, &sprites[i], dt)
	}
}

// Advance updates one sprite by one tick.
func (a *ParticleAnimator) Advance(grid *FieldGrid, vis VisibilitySource, s *MiasmaSprite, dt float32) {
	if s.Expired() {
		s.advanceState(StateRemoved)
		return
	}
	if !(dt >= 0) {
		dt = 0
	}
	p := a.params

	s.Life -= p.LifeDecay
	if s.Life < 0 {
		s.Life = 0
	}
	s.TimeAlive += dt

	a.drift(grid, s, dt)

	t := s.TimeAlive
	orbit := Vec3{
		X: s.Radius.X * sinf(s.AngSpeed.X*t+s.Phase.X),
		Y: s.Radius.Y * sinf(s.AngSpeed.Y*t+s.Phase.Y),
		Z: s.Radius.Z * sinf(s.AngSpeed.Z*t+s.Phase.Z),
	}
	s.Pos = s.Anchor.Add(orbit).Add(a.jitter(grid, s))

	if s.Direction.Len() > 1e-6 {
		s.Orientation = float32(math.Atan2(float64(s.Direction.Y), float64(s.Direction.X)))
	}

	target := clamp01(vis.VisibilityAt(s.Pos)) * a.Ramp(s)
	step := p.VisibilityRate * dt
	s.Visibility = clamp01(s.Visibility + clampFloat(target-s.Visibility, -step, step))

	a.updateState(s)
}

// drift pulls the anchor along the field, smoothing the sampled velocity so
// abrupt field changes between ticks do not make wisps jitter.
func (a *ParticleAnimator) drift(grid *FieldGrid, s *MiasmaSprite, dt float32) {
	v := grid.SampleVelocity(s.Pos).Scale(s.VelSpeed)
	k := clamp01(a.params.DirectionSmoothing)
	s.Direction.X += (v.X - s.Direction.X) * k
	s.Direction.Y += (v.Y - s.Direction.Y) * k

	s.Anchor.X += s.Direction.X * dt
	s.Anchor.Y += s.Direction.Y * dt
	s.Anchor = grid.ClampPosition(s.Anchor)
}

// jitter returns the coherent noise displacement for s.
func (a *ParticleAnimator) jitter(grid *FieldGrid, s *MiasmaSprite) Vec3 {
	if a.noise == nil || a.params.NoiseAmplitude == 0 {
		return Vec3{}
	}
	p := a.params
	at := grid.ClampPosition(s.Pos)
	nx := s.NoiseOffX + at.X*p.NoiseScale + s.TimeAlive*p.NoiseSpeed
	ny := s.NoiseOffY + at.Y*p.NoiseScale
	return Vec3{
		X: p.NoiseAmplitude * a.noise.Noise2(nx, ny),
		Y: p.NoiseAmplitude * a.noise.Noise2(ny, nx),
	}
}

// Ramp is the lifetime visibility envelope: 0 at birth rising over FadeIn,
// 1 in the middle, falling to 0 over the final FadeOut of life.
func (a *ParticleAnimator) Ramp(s *MiasmaSprite) float32 {
	if s.MaxLife <= 0 {
		return 0
	}
	remaining := clamp01(s.Life / s.MaxLife)
	progress := 1 - remaining
	r := float32(1)
	if a.params.FadeIn > 0 {
		r = min(r, progress/a.params.FadeIn)
	}
	if a.params.FadeOut > 0 {
		r = min(r, remaining/a.params.FadeOut)
	}
	return clamp01(r)
}

func (a *ParticleAnimator) updateState(s *MiasmaSprite) {
	if s.Life <= 0 || s.MaxLife <= 0 {
		s.advanceState(StateRemoved)
		return
	}
	remaining := s.Life / s.MaxLife
	switch {
	case remaining <= a.params.FadeOut:
		s.advanceState(StateFading)
	case 1-remaining >= a.params.FadeIn:
		s.advanceState(StateActive)
	}
}
