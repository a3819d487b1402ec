package main

import (
	"image/color"

	"github.com/pthm-cable/miasma/systems"
)

// heatmap writes floor z of grid into pixels, scaling pressure by 1/scale.
func heatmap(pixels []color.RGBA, grid *systems.FieldGrid, z int, scale float32) {
	if grid == nil || z < 0 || z >= grid.Ext.D {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	n := grid.Ext.W * grid.Ext.H
	base := z * n
	for i := 0; i < n && i < len(pixels); i++ {
		pixels[i] = ramp(clamp01(grid.Pressure[base+i] / scale))
	}
}

// ramp maps [0,1] to a dark green -> sickly yellow -> pale gradient.
func ramp(v float32) color.RGBA {
	var r, g, b uint8
	switch {
	case v < 0.25:
		t := v / 0.25
		r = uint8(12 + t*20)
		g = uint8(16 + t*40)
		b = uint8(14 + t*16)
	case v < 0.5:
		t := (v - 0.25) / 0.25
		r = uint8(32 + t*48)
		g = uint8(56 + t*74)
		b = uint8(30 + t*10)
	case v < 0.75:
		t := (v - 0.5) / 0.25
		r = uint8(80 + t*100)
		g = uint8(130 + t*60)
		b = uint8(40 + t*10)
	default:
		t := (v - 0.75) / 0.25
		r = uint8(180 + t*60)
		g = uint8(190 + t*50)
		b = uint8(50 + t*150)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clamp01(x float32) float32 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
