package main

import (
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/miasma/systems"
)

func TestRampIsMonotonicInBrightness(t *testing.T) {
	prev := -1
	for i := 0; i <= 100; i++ {
		c := ramp(float32(i) / 100)
		sum := int(c.R) + int(c.G) + int(c.B)
		if sum < prev {
			t.Fatalf("brightness drops at %d: %d < %d", i, sum, prev)
		}
		prev = sum
	}
}

func TestHeatmapSelectsFloor(t *testing.T) {
	grid := systems.NewFieldGrid(systems.Extents{W: 2, H: 2, D: 2}, 1, 1)
	grid.SetPressure(1, 1, 1, 4)
	grid.Pressure[0] = float32(math.NaN())

	pixels := make([]color.RGBA, 4)
	heatmap(pixels, grid, 1, 4)
	if pixels[3] != ramp(1) {
		t.Errorf("peak pixel = %+v, want %+v", pixels[3], ramp(1))
	}
	if pixels[0] != ramp(0) {
		t.Errorf("empty pixel = %+v, want %+v", pixels[0], ramp(0))
	}

	heatmap(pixels, grid, 0, 4)
	if pixels[0] != ramp(0) {
		t.Errorf("NaN pressure should map to the bottom of the ramp, got %+v", pixels[0])
	}

	before := pixels[3]
	heatmap(pixels, grid, 5, 4)
	if pixels[3] != before {
		t.Error("out of range floor should leave pixels untouched")
	}
}
