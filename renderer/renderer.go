// Package renderer draws the miasma field, wisps and debug overlays with
// raylib. Everything here reads engine state and never writes it.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/systems"
)

// worldRect returns the screen rectangle covering the whole floor plan.
func worldRect(cam *camera.Camera, worldW, worldH float32) rl.Rectangle {
	x, y := cam.WorldToScreen(0, 0)
	return rl.Rectangle{X: x, Y: y, Width: worldW * cam.Zoom, Height: worldH * cam.Zoom}
}

// floorOf returns the band index of a world Z, clamped to [0, floors).
func floorOf(z, bandHeight float32, floors int) int {
	if bandHeight <= 0 || !(z >= 0) {
		return 0
	}
	f := int(z / bandHeight)
	if f >= floors {
		return floors - 1
	}
	return f
}

// FloorOf returns the floor index of p in grid, for input handling.
func FloorOf(grid *systems.FieldGrid, p systems.Vec3) int {
	return floorOf(p.Z, grid.BandHeight, grid.Ext.D)
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
