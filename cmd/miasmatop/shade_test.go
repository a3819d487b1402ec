package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/miasma/systems"
)

func TestShadeEndpoints(t *testing.T) {
	r, _ := shade(0, 1)
	assert.Equal(t, ' ', r)

	r, _ = shade(1, 1)
	assert.Equal(t, '█', r)

	r, _ = shade(50, 1)
	assert.Equal(t, '█', r, "pressure above scale saturates")

	r, _ = shade(float32(math.NaN()), 1)
	assert.Equal(t, ' ', r, "NaN pressure reads as clear")

	r, _ = shade(0.5, 0)
	assert.Equal(t, '▒', r, "non-positive scale falls back to 1")
}

func TestShadeGlyphsThicken(t *testing.T) {
	prev := -1
	for i := 0; i <= 20; i++ {
		r, _ := shade(float32(i)/20, 1)
		idx := -1
		for j, s := range shadeRunes {
			if s == r {
				idx = j
			}
		}
		assert.GreaterOrEqual(t, idx, prev)
		prev = idx
	}
}

func TestFloorPeak(t *testing.T) {
	grid := systems.NewFieldGrid(systems.Extents{W: 3, H: 2, D: 2}, 1, 1)
	grid.SetPressure(2, 1, 1, 3)
	grid.SetPressure(0, 0, 0, 1)

	assert.Equal(t, float32(1), floorPeak(grid, 0))
	assert.Equal(t, float32(3), floorPeak(grid, 1))
	assert.Equal(t, float32(0), floorPeak(grid, 7))
}
