// Package components defines the ECS components of the wisp render registry.
package components

// Position is a wisp's composed world position.
type Position struct {
	X, Y, Z float32
}

// Opacity is the render alpha, in [0,1].
type Opacity struct {
	Value float32
}

// Orientation is the heading of a wisp's drift.
type Orientation struct {
	Heading float32 // radians
}
