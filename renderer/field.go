package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/miasma/camera"
	"github.com/pthm-cable/miasma/systems"
)

// FieldRenderer draws one floor of the pressure field as drifting fog.
// Pressure goes into a per-cell texture, the fog shader does the rest.
type FieldRenderer struct {
	shader       rl.Shader
	timeLoc      int32
	worldSizeLoc int32

	pressureTex rl.Texture2D
	texW, texH  int
	pixels      []color.RGBA

	initialized bool
}

// NewFieldRenderer creates a new field renderer.
func NewFieldRenderer() *FieldRenderer {
	return &FieldRenderer{}
}

// Init allocates the texture (must be called after the raylib window is
// created). Re-initialising with a different size replaces the texture.
func (r *FieldRenderer) Init(gridW, gridH int) {
	if r.initialized && gridW == r.texW && gridH == r.texH {
		return
	}
	if r.initialized {
		rl.UnloadTexture(r.pressureTex)
	} else {
		r.shader = rl.LoadShader("", "shaders/miasma_fog.fs")
		r.timeLoc = rl.GetShaderLocation(r.shader, "time")
		r.worldSizeLoc = rl.GetShaderLocation(r.shader, "worldSize")
	}

	r.texW = gridW
	r.texH = gridH
	r.pixels = make([]color.RGBA, gridW*gridH)

	img := rl.GenImageColor(gridW, gridH, rl.Black)
	r.pressureTex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.pressureTex, rl.FilterBilinear)
	rl.SetTextureWrap(r.pressureTex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads floor z of grid. Values are normalised by maxPressure and
// square-rooted so thin fog stays visible.
func (r *FieldRenderer) Update(grid *systems.FieldGrid, z int, maxPressure float32) {
	if grid == nil {
		return
	}
	w, h := grid.Ext.W, grid.Ext.H
	r.Init(w, h)
	if z < 0 || z >= grid.Ext.D {
		return
	}
	if maxPressure <= 0 {
		maxPressure = 1
	}

	base := z * w * h
	for i := 0; i < w*h; i++ {
		v := clamp01(grid.Pressure[base+i] / maxPressure)
		v = float32(math.Sqrt(float64(v)))
		r.pixels[i] = color.RGBA{R: uint8(v * 255), A: 255}
	}
	rl.UpdateTexture(r.pressureTex, r.pixels)
}

// Draw renders the fog over the floor plan.
func (r *FieldRenderer) Draw(cam *camera.Camera, worldW, worldH, time float32) {
	if !r.initialized {
		return
	}

	rl.SetShaderValue(r.shader, r.timeLoc, []float32{time}, rl.ShaderUniformFloat)
	rl.SetShaderValue(r.shader, r.worldSizeLoc, []float32{worldW, worldH}, rl.ShaderUniformVec2)

	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dstRect := worldRect(cam, worldW, worldH)

	rl.BeginShaderMode(r.shader)
	rl.DrawTexturePro(r.pressureTex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
	rl.EndShaderMode()
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadShader(r.shader)
	rl.UnloadTexture(r.pressureTex)
	r.initialized = false
}
