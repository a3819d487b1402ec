package components

// Wisp links a render entity back to its sprite in the arena.
type Wisp struct {
	SpriteID uint32
	Fading   bool // in the final fraction of life
}
