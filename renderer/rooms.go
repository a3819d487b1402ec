package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/systems"
)

// RoomRenderer draws room outlines, names and decay modifiers.
type RoomRenderer struct {
	Wall  rl.Color
	Label rl.Color
}

// NewRoomRenderer creates a room renderer.
func NewRoomRenderer() *RoomRenderer {
	return &RoomRenderer{
		Wall:  rl.Color{R: 120, G: 110, B: 95, A: 220},
		Label: rl.Color{R: 180, G: 170, B: 150, A: 200},
	}
}

// DrawFloorPlan fills the world bounds so the house reads against the
// background.
func (r *RoomRenderer) DrawFloorPlan(cam *camera.Camera, worldW, worldH float32) {
	rect := worldRect(cam, worldW, worldH)
	rl.DrawRectangleRec(rect, rl.Color{R: 28, G: 26, B: 24, A: 255})
	rl.DrawRectangleLinesEx(rect, 2, r.Wall)
}

// Draw renders the rooms on floor with their modifiers from table.
func (r *RoomRenderer) Draw(cam *camera.Camera, rooms []systems.RoomSpec, floor int, cellSize float32, table *systems.RoomModifierTable) {
	for _, room := range rooms {
		if room.Floor != floor {
			continue
		}
		x0, y0 := cam.WorldToScreen(float32(room.Rect[0])*cellSize, float32(room.Rect[1])*cellSize)
		x1, y1 := cam.WorldToScreen(float32(room.Rect[2])*cellSize, float32(room.Rect[3])*cellSize)
		rect := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
		rl.DrawRectangleLinesEx(rect, 2, r.Wall)

		if rect.Width < 40 || rect.Height < 24 {
			continue
		}
		label := fmt.Sprintf("%s x%.2f", room.ID, table.ModifierFor(room.ID))
		rl.DrawText(label, int32(x0)+6, int32(y0)+4, 12, r.Label)
	}
}
