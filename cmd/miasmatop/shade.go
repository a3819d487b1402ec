package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/miasma/systems"
)

// shadeRunes go from clear air to thick fog.
var shadeRunes = []rune{' ', '░', '▒', '▓', '█'}

// shade returns the glyph and style for a cell with pressure p, where scale
// is the pressure drawn as full fog.
func shade(p, scale float32) (rune, tcell.Style) {
	v := density(p, scale)
	idx := int(v*float32(len(shadeRunes)-1) + 0.5)
	fg := tcell.NewRGBColor(int32(60+v*150), int32(90+v*140), int32(40+v*30))
	return shadeRunes[idx], tcell.StyleDefault.Foreground(fg).Background(fogBackground(p, scale))
}

// fogBackground is the cell background for pressure p.
func fogBackground(p, scale float32) tcell.Color {
	v := density(p, scale)
	return tcell.NewRGBColor(int32(10+v*30), int32(14+v*40), int32(12+v*14))
}

// density maps pressure to [0,1]. NaN reads as clear air.
func density(p, scale float32) float32 {
	if scale <= 0 {
		scale = 1
	}
	v := p / scale
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}

// floorPeak returns the highest pressure on floor z.
func floorPeak(grid *systems.FieldGrid, z int) float32 {
	if z < 0 || z >= grid.Ext.D {
		return 0
	}
	n := grid.Ext.W * grid.Ext.H
	var peak float32
	for _, p := range grid.Pressure[z*n : (z+1)*n] {
		peak = max(peak, p)
	}
	return peak
}
