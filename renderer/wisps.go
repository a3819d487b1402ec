package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/game"
)

// WispRenderer draws wisps as soft glowing puffs with a short tail
// pointing against their heading.
type WispRenderer struct {
	// Size is the puff radius in world units.
	Size  float32
	Color rl.Color
}

// NewWispRenderer creates a wisp renderer with the default look.
func NewWispRenderer() *WispRenderer {
	return &WispRenderer{
		Size:  0.35,
		Color: rl.Color{R: 170, G: 215, B: 120, A: 255},
	}
}

// Draw renders every transform on floor with additive blending.
func (r *WispRenderer) Draw(cam *camera.Camera, transforms []game.RenderTransform, floor int, bandHeight float32, floors int) {
	rl.BeginBlendMode(rl.BlendAdditive)

	radius := r.Size * cam.Zoom
	for i := range transforms {
		t := &transforms[i]
		if floorOf(t.Pos.Z, bandHeight, floors) != floor {
			continue
		}
		alpha := clamp01(t.Opacity) * 160
		if alpha < 2 {
			continue
		}
		if !cam.IsVisible(t.Pos.X, t.Pos.Y, r.Size*2) {
			continue
		}

		sx, sy := cam.WorldToScreen(t.Pos.X, t.Pos.Y)

		// Height within the band swells the puff slightly
		band := t.Pos.Z/bandHeight - float32(floor)
		size := radius * (0.85 + 0.3*clamp01(band))

		// Tail trails behind the heading
		hx := float32(math.Cos(float64(t.Orientation)))
		hy := float32(math.Sin(float64(t.Orientation)))
		tail := r.tint(alpha * 0.35)
		rl.DrawLineEx(
			rl.Vector2{X: sx, Y: sy},
			rl.Vector2{X: sx - hx*size*1.8, Y: sy - hy*size*1.8},
			size*0.6,
			tail,
		)

		// Layered circles approximate a soft falloff
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size*1.6, r.tint(alpha*0.15))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, r.tint(alpha*0.35))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size*0.45, r.tint(alpha*0.6))
	}

	rl.EndBlendMode()
}

func (r *WispRenderer) tint(alpha float32) rl.Color {
	c := r.Color
	c.A = uint8(min(alpha, 255))
	return c
}
