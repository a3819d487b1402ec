package game

import "github.com/pthm-cable/miasma/systems"

// CellProbe is a read-only view of the field at one position.
type CellProbe struct {
	Pos        systems.Vec3
	X, Y, Z    int
	Room       systems.RoomID
	Modifier   float32
	Pressure   float32
	Velocity   systems.Vec2
	Visibility float32
	NearWisps  int // wisps within ProbeRadius
}

// ProbeRadius is the distance, in world units, within which Probe counts wisps.
const ProbeRadius = 1.5

// Probe samples the loaded level at p. ok is false when no level is loaded.
func (g *Game) Probe(p systems.Vec3) (CellProbe, bool) {
	if !g.loaded {
		return CellProbe{}, false
	}
	p = g.grid.ClampPosition(p)
	x, y, z := g.grid.CellAt(p)
	room := g.level.RoomAt(p)

	probe := CellProbe{
		Pos:        p,
		X:          x,
		Y:          y,
		Z:          z,
		Room:       room,
		Modifier:   g.table.ModifierFor(room),
		Pressure:   g.grid.PressureAt(x, y, z),
		Velocity:   g.grid.Velocity[g.grid.Index(x, y, z)],
		Visibility: g.vis.VisibilityAt(p),
	}

	r2 := float32(ProbeRadius * ProbeRadius)
	for _, s := range g.arena.Slots() {
		if _, _, sz := g.grid.CellAt(s.Pos); sz != z {
			continue
		}
		dx, dy := s.Pos.X-p.X, s.Pos.Y-p.Y
		if dx*dx+dy*dy <= r2 {
			probe.NearWisps++
		}
	}
	return probe, true
}

// Rooms returns the room specs of the loaded level, or nil when the level
// does not describe its rooms.
func (g *Game) Rooms() []systems.RoomSpec {
	if r, ok := g.level.(interface{ Rooms() []systems.RoomSpec }); ok {
		return r.Rooms()
	}
	return nil
}

// Modifiers returns the room modifier table of the loaded level.
func (g *Game) Modifiers() *systems.RoomModifierTable {
	return g.table
}
