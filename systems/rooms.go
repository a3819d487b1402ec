package systems

import (
	"math"
	"sort"
)

// RoomID identifies a room of the house.
type RoomID string

// NoRoom is returned for positions outside every room (hallway gaps, walls).
const NoRoom RoomID = ""

// DefaultModifier is the neutral decay bias for rooms absent from the table.
const DefaultModifier float32 = 1.0

// RoomModifier pairs a room with its decay bias.
type RoomModifier struct {
	Room     RoomID  `yaml:"room"`
	Modifier float32 `yaml:"modifier"`
}

// RoomModifierTable maps rooms to a decay bias. Higher values dissipate
// miasma faster (ventilated rooms), lower values retain it (sealed rooms).
// The table is immutable once built; a level change replaces it wholesale.
type RoomModifierTable struct {
	mods map[RoomID]float32
}

// NewRoomModifierTable copies mods into a new table.
func NewRoomModifierTable(mods map[RoomID]float32) *RoomModifierTable {
	t := &RoomModifierTable{mods: make(map[RoomID]float32, len(mods))}
	for id, m := range mods {
		t.mods[id] = sanitizeModifier(m)
	}
	return t
}

// LoadRoomModifiers builds a table from a list. Later entries win on duplicates.
func LoadRoomModifiers(list []RoomModifier) *RoomModifierTable {
	t := &RoomModifierTable{mods: make(map[RoomID]float32, len(list))}
	for _, rm := range list {
		t.mods[rm.Room] = sanitizeModifier(rm.Modifier)
	}
	return t
}

// ModifierFor returns the modifier for id, or DefaultModifier if unknown.
// A nil table behaves as empty.
func (t *RoomModifierTable) ModifierFor(id RoomID) float32 {
	if t == nil {
		return DefaultModifier
	}
	if m, ok := t.mods[id]; ok {
		return m
	}
	return DefaultModifier
}

// Len returns the number of rooms with an explicit modifier.
func (t *RoomModifierTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.mods)
}

// Rooms returns the rooms with explicit modifiers, sorted.
func (t *RoomModifierTable) Rooms() []RoomID {
	if t == nil {
		return nil
	}
	ids := make([]RoomID, 0, len(t.mods))
	for id := range t.mods {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sanitizeModifier keeps decay from turning into growth.
func sanitizeModifier(m float32) float32 {
	if math.IsNaN(float64(m)) || m < 0 {
		return 0
	}
	return m
}
