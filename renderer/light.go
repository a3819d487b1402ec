package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/systems"
)

// LightRenderer shades unlit cells of the current floor. The displayed
// values ease toward the light map so reveals fade in rather than pop.
type LightRenderer struct {
	lightTex   rl.Texture2D
	texW, texH int

	current  []float32 // target values
	display  []float32 // currently displayed (interpolated)
	pixels   []color.RGBA
	blending bool

	// MaxDarkness is the overlay alpha over a fully unlit cell.
	MaxDarkness uint8

	initialized bool
}

// NewLightRenderer creates a new light renderer.
func NewLightRenderer() *LightRenderer {
	return &LightRenderer{MaxDarkness: 210}
}

// Init allocates the texture (must be called after the raylib window is created).
func (l *LightRenderer) Init(w, h int) {
	if l.initialized && w == l.texW && h == l.texH {
		return
	}
	if l.initialized {
		rl.UnloadTexture(l.lightTex)
	}

	l.texW = w
	l.texH = h

	img := rl.GenImageColor(w, h, rl.Black)
	l.lightTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(l.lightTex, rl.FilterBilinear)
	rl.SetTextureWrap(l.lightTex, rl.WrapClamp)

	size := w * h
	l.current = make([]float32, size)
	l.display = make([]float32, size)
	l.pixels = make([]color.RGBA, size)
	l.blending = true

	l.initialized = true
}

// Update sets new target values from floor z of lights.
func (l *LightRenderer) Update(lights *systems.LightMap, ext systems.Extents, z int) {
	if lights == nil {
		return
	}
	l.Init(ext.W, ext.H)
	l.current = lights.Floor(z, l.current)
	if len(l.current) != len(l.display) {
		l.current = l.current[:0]
		return
	}
	l.blending = true
}

// Draw renders the darkness overlay, blending toward the current values.
func (l *LightRenderer) Draw(cam *camera.Camera, worldW, worldH, dt float32) {
	if !l.initialized {
		return
	}

	if l.blending && len(l.current) == len(l.display) {
		blendRate := min(float32(3.0)*dt, 1) // smooth over ~0.3 seconds

		allDone := true
		for i := range l.display {
			diff := l.current[i] - l.display[i]
			if diff > 0.001 || diff < -0.001 {
				l.display[i] += diff * blendRate
				allDone = false
			} else {
				l.display[i] = l.current[i]
			}
		}
		if allDone {
			l.blending = false
		}
		l.uploadTexture()
	}

	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(l.texW), Height: float32(l.texH)}
	rl.DrawTexturePro(l.lightTex, srcRect, worldRect(cam, worldW, worldH), rl.Vector2{}, 0, rl.White)
}

// uploadTexture converts the display buffer to black pixels with alpha.
func (l *LightRenderer) uploadTexture() {
	for i, val := range l.display {
		dark := (1 - clamp01(val)) * float32(l.MaxDarkness)
		l.pixels[i] = color.RGBA{A: uint8(dark)}
	}
	rl.UpdateTexture(l.lightTex, l.pixels)
}

// Unload frees resources.
func (l *LightRenderer) Unload() {
	if l.initialized {
		rl.UnloadTexture(l.lightTex)
		l.initialized = false
	}
}
