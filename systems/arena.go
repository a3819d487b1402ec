package systems

// SpriteArena stores live wisps densely. Sprite IDs are stable for the life
// of a sprite; slot positions are not, since removal swaps the last slot in.
type SpriteArena struct {
	slots  []MiasmaSprite
	nextID uint32
}

// NewSpriteArena creates an arena with room for capacity sprites.
func NewSpriteArena(capacity int) *SpriteArena {
	return &SpriteArena{
		slots:  make([]MiasmaSprite, 0, capacity),
		nextID: 1,
	}
}

// Len returns the number of live sprites.
func (a *SpriteArena) Len() int {
	return len(a.slots)
}

// Slots exposes the live sprites for in-place update. The slice is only
// valid until the next Add or Sweep.
func (a *SpriteArena) Slots() []MiasmaSprite {
	return a.slots
}

// At returns the sprite in slot i.
func (a *SpriteArena) At(i int) *MiasmaSprite {
	return &a.slots[i]
}

// Find returns the sprite with the given ID, or nil.
func (a *SpriteArena) Find(id uint32) *MiasmaSprite {
	for i := range a.slots {
		if a.slots[i].ID == id {
			return &a.slots[i]
		}
	}
	return nil
}

// Add stores s, assigns its ID and returns the stored copy.
func (a *SpriteArena) Add(s MiasmaSprite) *MiasmaSprite {
	s.ID = a.nextID
	a.nextID++
	a.slots = append(a.slots, s)
	return &a.slots[len(a.slots)-1]
}

// Sweep removes every expired sprite with O(1) swap-remove and calls
// onRemove (if non-nil) with each sprite before it is overwritten.
// Must not be called while iterating Slots.
func (a *SpriteArena) Sweep(onRemove func(*MiasmaSprite)) int {
	removed := 0
	for i := 0; i < len(a.slots); {
		s := &a.slots[i]
		if !s.Expired() {
			i++
			continue
		}
		s.advanceState(StateRemoved)
		if onRemove != nil {
			onRemove(s)
		}
		last := len(a.slots) - 1
		a.slots[i] = a.slots[last]
		a.slots[last] = MiasmaSprite{}
		a.slots = a.slots[:last]
		removed++
	}
	return removed
}

// DespawnAll flags every sprite for removal on the next sweep.
func (a *SpriteArena) DespawnAll() {
	for i := range a.slots {
		a.slots[i].Despawn = true
	}
}

// Clear drops every sprite without callbacks.
func (a *SpriteArena) Clear() {
	clear(a.slots)
	a.slots = a.slots[:0]
}
