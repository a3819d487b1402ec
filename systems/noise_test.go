package systems

import "testing"

func TestNoiseBackends(t *testing.T) {
	for _, kind := range []string{"perlin", "simplex"} {
		t.Run(kind, func(t *testing.T) {
			a, err := NewNoise(kind, 11)
			if err != nil {
				t.Fatal(err)
			}
			b, _ := NewNoise(kind, 11)

			var nonZero bool
			for i := 0; i < 500; i++ {
				x := float32(i)*0.173 - 40
				y := float32(i)*0.291 + 3
				v := a.Noise2(x, y)
				if v < -1.01 || v > 1.01 {
					t.Fatalf("Noise2(%v,%v) = %v outside [-1,1]", x, y, v)
				}
				if v != b.Noise2(x, y) {
					t.Fatalf("same seed gave different values at (%v,%v)", x, y)
				}
				if v != 0 {
					nonZero = true
				}
			}
			if !nonZero {
				t.Error("noise is identically zero")
			}
		})
	}
}

func TestNoiseIsContinuous(t *testing.T) {
	n := NewPerlinNoise(3)
	prev := n.Noise2(0.01, 0.5)
	for i := 2; i < 400; i++ {
		x := float32(i) * 0.01
		v := n.Noise2(x, 0.5)
		if d := v - prev; d > 0.1 || d < -0.1 {
			t.Fatalf("jump of %v between adjacent samples at x=%v", d, x)
		}
		prev = v
	}
}

func TestNewNoiseUnknownKind(t *testing.T) {
	if _, err := NewNoise("worley", 1); err == nil {
		t.Error("expected error for unknown noise kind")
	}
}
