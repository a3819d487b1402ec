package systems

import (
	"sync"
	"testing"
)

func TestLightMapSetAndClamp(t *testing.T) {
	m := NewLightMap(Extents{W: 4, H: 4, D: 2}, 1, 2)

	m.Set(Vec3{X: 1.5, Y: 2.5, Z: 3}, 0.7)
	if got := m.VisibilityAt(Vec3{X: 1.1, Y: 2.9, Z: 2.1}); got != 0.7 {
		t.Errorf("same cell = %v, want 0.7", got)
	}
	if got := m.VisibilityAt(Vec3{X: 1.5, Y: 2.5, Z: 0}); got != 0 {
		t.Errorf("floor below = %v, want 0", got)
	}

	m.Set(Vec3{}, 4)
	if got := m.VisibilityAt(Vec3{X: -3, Y: -3}); got != 1 {
		t.Errorf("clamped value = %v, want 1", got)
	}
}

func TestLightMapRevealNeverDims(t *testing.T) {
	m := NewLightMap(Extents{W: 10, H: 10, D: 1}, 1, 1)
	centre := Vec3{X: 5.5, Y: 5.5}

	m.Reveal(centre, 3, 1)
	lit := m.VisibilityAt(centre)
	if lit < 0.9 {
		t.Fatalf("centre = %v, want nearly fully lit", lit)
	}
	if got := m.VisibilityAt(Vec3{X: 0.5, Y: 0.5}); got != 0 {
		t.Errorf("far corner = %v, want dark", got)
	}

	m.Reveal(centre, 3, 0.2)
	if got := m.VisibilityAt(centre); got != lit {
		t.Errorf("weaker reveal dimmed centre from %v to %v", lit, got)
	}

	m.Fade(0.5)
	if got := m.VisibilityAt(centre); got != lit*0.5 {
		t.Errorf("faded centre = %v, want %v", got, lit*0.5)
	}
}

func TestLightMapConcurrentAccess(t *testing.T) {
	m := NewLightMap(Extents{W: 16, H: 16, D: 1}, 1, 1)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				m.Reveal(Vec3{X: float32(i % 16), Y: float32(w * 4)}, 2, 1)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				v := m.VisibilityAt(Vec3{X: float32(i % 16), Y: 4})
				if v < 0 || v > 1 {
					t.Errorf("visibility %v outside [0,1]", v)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestVisibilityFunc(t *testing.T) {
	half := VisibilityFunc(func(p Vec3) float32 { return 0.5 })
	if half.VisibilityAt(Vec3{}) != 0.5 {
		t.Error("VisibilityFunc did not forward")
	}
	if FullVisibility.VisibilityAt(Vec3{X: 1e9}) != 1 {
		t.Error("FullVisibility should be 1 everywhere")
	}
}

func TestLightMapFloorCopy(t *testing.T) {
	m := NewLightMap(Extents{W: 3, H: 2, D: 2}, 1, 1)
	m.Set(Vec3{X: 2.5, Y: 1.5, Z: 1.5}, 0.5)

	upper := m.Floor(1, nil)
	if len(upper) != 6 || upper[5] != 0.5 {
		t.Errorf("upper floor = %v", upper)
	}
	upper[5] = 1
	if m.VisibilityAt(Vec3{X: 2.5, Y: 1.5, Z: 1.5}) != 0.5 {
		t.Error("Floor must return a copy")
	}
	if got := m.Floor(5, nil); len(got) != 0 {
		t.Errorf("out of range floor = %v", got)
	}
}
