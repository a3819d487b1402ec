package systems

import "testing"

func TestArenaAssignsStableIDs(t *testing.T) {
	a := NewSpriteArena(4)
	first := a.Add(MiasmaSprite{Life: 1}).ID
	second := a.Add(MiasmaSprite{Life: 1}).ID
	third := a.Add(MiasmaSprite{Life: 1}).ID

	if first == second || second == third || first == 0 {
		t.Fatalf("ids not unique: %d %d %d", first, second, third)
	}

	a.Find(first).Despawn = true
	if n := a.Sweep(nil); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}

	// The last slot moved into the hole; ids still resolve.
	if s := a.Find(third); s == nil || s.ID != third {
		t.Error("third sprite lost after swap-remove")
	}
	if a.Find(first) != nil {
		t.Error("removed sprite still findable")
	}
	if id := a.Add(MiasmaSprite{Life: 1}).ID; id == first {
		t.Error("ids must not be reused")
	}
}

func TestArenaSweepCallsOnRemove(t *testing.T) {
	a := NewSpriteArena(8)
	for i := 0; i < 6; i++ {
		a.Add(MiasmaSprite{Life: float32(i % 2)})
	}

	var removed []uint32
	n := a.Sweep(func(s *MiasmaSprite) {
		if s.State != StateRemoved {
			t.Errorf("sprite %d not marked removed", s.ID)
		}
		removed = append(removed, s.ID)
	})

	if n != 3 || len(removed) != 3 {
		t.Fatalf("removed %d (%d callbacks), want 3", n, len(removed))
	}
	if a.Len() != 3 {
		t.Errorf("len = %d, want 3", a.Len())
	}
	for _, s := range a.Slots() {
		if s.Expired() {
			t.Errorf("expired sprite %d survived sweep", s.ID)
		}
	}
}

func TestArenaDespawnAllAndClear(t *testing.T) {
	a := NewSpriteArena(4)
	for i := 0; i < 4; i++ {
		a.Add(MiasmaSprite{Life: 10})
	}
	a.DespawnAll()
	if n := a.Sweep(nil); n != 4 {
		t.Errorf("swept %d, want 4", n)
	}

	a.Add(MiasmaSprite{Life: 10})
	a.Clear()
	if a.Len() != 0 {
		t.Errorf("len after clear = %d", a.Len())
	}
}

func TestSpriteStateOnlyMovesForward(t *testing.T) {
	s := MiasmaSprite{State: StateFading}
	s.advanceState(StateActive)
	if s.State != StateFading {
		t.Errorf("state went backward to %v", s.State)
	}
	s.advanceState(StateRemoved)
	if s.State != StateRemoved {
		t.Errorf("state = %v, want removed", s.State)
	}
	if StateSpawning.String() != "spawning" || SpriteState(99).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
