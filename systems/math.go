package systems

import "math"

// Vec2 is a planar vector on the X/Y floor plane.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a world position. Z is height above the ground floor.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Len returns the magnitude of v.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range. NaN maps to 0.
func clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// softCap scales v so its magnitude approaches but never exceeds limit.
func softCap(v Vec2, limit float32) Vec2 {
	mag := v.Len()
	if mag == 0 || limit <= 0 || !finite(mag) {
		return Vec2{}
	}
	capped := limit * float32(math.Tanh(float64(mag/limit)))
	return v.Scale(capped / mag)
}

// randRange returns a uniform value in [lo, hi).
func randRange(f func() float32, lo, hi float32) float32 {
	return lo + f()*(hi-lo)
}

func sinf(x float32) float32 {
	return float32(math.Sin(float64(x)))
}
