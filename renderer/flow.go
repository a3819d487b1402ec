package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/systems"
)

// FlowRenderer draws the field velocity as arrows, one per Stride cells.
type FlowRenderer struct {
	Stride int
	// Scale converts velocity to arrow length in world units.
	Scale float32
}

// NewFlowRenderer creates a new flow renderer.
func NewFlowRenderer() *FlowRenderer {
	return &FlowRenderer{Stride: 1, Scale: 0.8}
}

// Draw renders the velocity of floor z, skipping near-still cells.
func (r *FlowRenderer) Draw(cam *camera.Camera, grid *systems.FieldGrid, z int, maxVelocity float32) {
	if grid == nil || z < 0 || z >= grid.Ext.D {
		return
	}
	if maxVelocity <= 0 {
		maxVelocity = 1
	}
	stride := max(r.Stride, 1)
	// Thin arrows out when zoomed far out
	if cam.Zoom*grid.CellSize < 8 {
		stride *= 2
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	for y := 0; y < grid.Ext.H; y += stride {
		for x := 0; x < grid.Ext.W; x += stride {
			v := grid.Velocity[grid.Index(x, y, z)]
			speed := v.Len()
			if speed < maxVelocity*0.02 {
				continue
			}
			c := grid.CellCenter(x, y, z)
			if !cam.IsVisible(c.X, c.Y, grid.CellSize) {
				continue
			}

			strength := clamp01(speed / maxVelocity)
			length := r.Scale * grid.CellSize * strength
			dx, dy := v.X/speed*length, v.Y/speed*length

			sx, sy := cam.WorldToScreen(c.X, c.Y)
			ex, ey := cam.WorldToScreen(c.X+dx, c.Y+dy)
			color := rl.Color{R: 90, G: 140, B: 170, A: uint8(60 + 160*strength)}
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 1.5, color)

			// Arrow head
			angle := math.Atan2(float64(ey-sy), float64(ex-sx))
			head := float32(4 + 4*strength)
			for _, side := range []float64{2.6, -2.6} {
				hx := ex + head*float32(math.Cos(angle+side))
				hy := ey + head*float32(math.Sin(angle+side))
				rl.DrawLineEx(rl.Vector2{X: ex, Y: ey}, rl.Vector2{X: hx, Y: hy}, 1.5, color)
			}
		}
	}
	rl.EndBlendMode()
}
