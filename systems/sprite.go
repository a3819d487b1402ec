package systems

import (
	"github.com/mlange-42/ark/ecs"
)

// SpriteState is the lifecycle stage of a wisp. Transitions only move forward.
type SpriteState uint8

const (
	StateSpawning SpriteState = iota // fading in
	StateActive                      // fully ramped in
	StateFading                      // in the final fraction of life
	StateRemoved                     // waiting for the sweep pass
)

func (s SpriteState) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateActive:
		return "active"
	case StateFading:
		return "fading"
	case StateRemoved:
		return "removed"
	}
	return "unknown"
}

// MiasmaSprite is one visible wisp orbiting a drifting anchor.
type MiasmaSprite struct {
	ID uint32

	Anchor   Vec3 // orbit centre, drifts with the field
	Radius   Vec3 // orbit amplitude per axis
	AngSpeed Vec3 // orbit angular frequency per axis (rad/s)
	Phase    Vec3 // orbit phase per axis

	NoiseOffX float32
	NoiseOffY float32

	Visibility float32 // [0,1]
	TimeAlive  float32 // seconds
	Despawn    bool    // set externally to force removal
	Life       float32
	MaxLife    float32

	VelSpeed  float32 // how strongly field velocity pulls the anchor
	Direction Vec2    // smoothed drift velocity

	Pos         Vec3    // composed position from the last update
	Orientation float32 // radians
	State       SpriteState

	// Entity mirrors the sprite in the render registry. Zero when not mirrored.
	Entity ecs.Entity
}

// Expired reports whether the sweep pass should remove the sprite.
func (s *MiasmaSprite) Expired() bool {
	return s.Despawn || s.Life <= 0
}

// advanceState moves s forward to next; backward transitions are ignored.
func (s *MiasmaSprite) advanceState(next SpriteState) {
	if next > s.State {
		s.State = next
	}
}
