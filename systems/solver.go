package systems

import (
	"github.com/pthm-cable/miasma/config"
)

// SolverParams are the tuned constants of the field solver. They are per tick,
// not per second, except emitter rates which scale with dt.
type SolverParams struct {
	DiffusionRate   float32 // blend toward neighbour mean, clamped to [0,1]
	DecayRate       float32 // fraction lost per tick at modifier 1.0
	GradientScale   float32
	VelocityDamping float32
	MaxVelocity     float32
	MaxPressure     float32
}

// SolverParamsFromConfig reads solver parameters from cfg.
func SolverParamsFromConfig(cfg *config.Config) SolverParams {
	c := cfg.Solver
	return SolverParams{
		DiffusionRate:   float32(c.DiffusionRate),
		DecayRate:       float32(c.DecayRate),
		GradientScale:   float32(c.GradientScale),
		VelocityDamping: float32(c.VelocityDamping),
		MaxVelocity:     float32(c.MaxVelocity),
		MaxPressure:     float32(c.MaxPressure),
	}
}

type boundEmitter struct {
	index int
	rate  float32
}

// FieldSolver advances a FieldGrid: inflow, diffusion, room-biased decay,
// gradient-driven velocity and clamping. It is the only writer of the grid.
type FieldSolver struct {
	params SolverParams

	cellMod  []float32 // decay modifier per cell, cached at Bind
	emitters []boundEmitter
	tmp      []float32
}

// NewFieldSolver creates a solver with the given parameters.
func NewFieldSolver(p SolverParams) *FieldSolver {
	s := &FieldSolver{}
	s.SetParams(p)
	return s
}

// SetParams replaces the tuning constants. Takes effect on the next Step.
func (s *FieldSolver) SetParams(p SolverParams) {
	p.DiffusionRate = clamp01(p.DiffusionRate)
	if p.DecayRate < 0 {
		p.DecayRate = 0
	}
	p.VelocityDamping = clamp01(p.VelocityDamping)
	if p.MaxPressure <= 0 {
		p.MaxPressure = float32(1 << 20)
	}
	s.params = p
}

// Params returns the current tuning constants.
func (s *FieldSolver) Params() SolverParams {
	return s.params
}

// Bind caches the per-cell room modifier and emitter cells for grid. The
// table is only read here, never during Step. A nil level gives every cell
// the modifier of NoRoom.
func (s *FieldSolver) Bind(grid *FieldGrid, level Level, table *RoomModifierTable) {
	n := grid.Ext.Cells()
	if cap(s.cellMod) < n {
		s.cellMod = make([]float32, n)
	}
	s.cellMod = s.cellMod[:n]
	if cap(s.tmp) < n {
		s.tmp = make([]float32, n)
	}
	s.tmp = s.tmp[:n]

	for i := range s.cellMod {
		room := NoRoom
		if level != nil {
			x, y, z := grid.Coords(i)
			room = level.RoomAt(grid.CellCenter(x, y, z))
		}
		s.cellMod[i] = table.ModifierFor(room)
	}

	s.emitters = s.emitters[:0]
	if src, ok := level.(EmitterSource); ok {
		for _, e := range src.Emitters() {
			x, y, z := grid.CellAt(e.Pos)
			s.emitters = append(s.emitters, boundEmitter{index: grid.Index(x, y, z), rate: e.Rate})
		}
	}
}

// Unbind drops cached level state.
func (s *FieldSolver) Unbind() {
	s.cellMod = s.cellMod[:0]
	s.emitters = s.emitters[:0]
}

// Modifier returns the cached modifier for cell index i.
func (s *FieldSolver) Modifier(i int) float32 {
	if i < 0 || i >= len(s.cellMod) {
		return DefaultModifier
	}
	return s.cellMod[i]
}

// InflowRate returns the summed rate of the bound emitters, per second.
func (s *FieldSolver) InflowRate() float32 {
	var total float32
	for _, e := range s.emitters {
		total += e.rate
	}
	return total
}

// Step advances grid by one tick. dt only scales emitter inflow.
func (s *FieldSolver) Step(grid *FieldGrid, dt float32) {
	n := grid.Ext.Cells()
	if len(s.tmp) != n {
		s.tmp = make([]float32, n)
	}
	bound := len(s.cellMod) == n

	p := s.params
	sanitizePressure(grid.Pressure, p.MaxPressure)

	for _, e := range s.emitters {
		if e.index < n {
			grid.Pressure[e.index] += e.rate * dt
		}
	}

	s.diffuseAndDecay(grid, bound)
	grid.Pressure, s.tmp = s.tmp, grid.Pressure

	s.updateVelocity(grid)
}

// diffuseAndDecay writes the next pressure into s.tmp.
// Out-of-bounds neighbours count as zero pressure (open boundary).
func (s *FieldSolver) diffuseAndDecay(grid *FieldGrid, bound bool) {
	w, h, d := grid.Ext.W, grid.Ext.H, grid.Ext.D
	src := grid.Pressure
	dst := s.tmp
	a := s.params.DiffusionRate
	decay := s.params.DecayRate
	maxP := s.params.MaxPressure

	neighbours := float32(4)
	if d > 1 {
		neighbours = 6
	}

	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := (z*h+y)*w + x
				c := src[i]

				var sum float32
				if x > 0 {
					sum += src[i-1]
				}
				if x < w-1 {
					sum += src[i+1]
				}
				if y > 0 {
					sum += src[i-w]
				}
				if y < h-1 {
					sum += src[i+w]
				}
				if d > 1 {
					if z > 0 {
						sum += src[i-w*h]
					}
					if z < d-1 {
						sum += src[i+w*h]
					}
				}

				next := (1-a)*c + a*(sum/neighbours)

				mod := DefaultModifier
				if bound {
					mod = s.cellMod[i]
				}
				next *= clamp01(1 - decay*mod)

				dst[i] = clampPressure(next, maxP)
			}
		}
	}
}

// updateVelocity moves velocity toward the negative pressure gradient and
// soft caps the magnitude.
func (s *FieldSolver) updateVelocity(grid *FieldGrid) {
	w, h, d := grid.Ext.W, grid.Ext.H, grid.Ext.D
	pr := grid.Pressure
	vel := grid.Velocity
	inv2h := 1 / (2 * grid.CellSize)
	damp := s.params.VelocityDamping
	k := s.params.GradientScale
	limit := s.params.MaxVelocity

	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := (z*h+y)*w + x

				var left, right, up, down float32
				if x > 0 {
					left = pr[i-1]
				}
				if x < w-1 {
					right = pr[i+1]
				}
				if y > 0 {
					up = pr[i-w]
				}
				if y < h-1 {
					down = pr[i+w]
				}
				gx := (right - left) * inv2h
				gy := (down - up) * inv2h

				v := vel[i]
				v.X = v.X*damp - k*gx
				v.Y = v.Y*damp - k*gy
				vel[i] = softCap(v, limit)
			}
		}
	}
}

func sanitizePressure(p []float32, maxP float32) {
	for i, v := range p {
		p[i] = clampPressure(v, maxP)
	}
}

// clampPressure maps NaN and negatives to 0 and caps at maxP.
func clampPressure(v, maxP float32) float32 {
	if !(v >= 0) {
		return 0
	}
	if v > maxP {
		return maxP
	}
	return v
}
