package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// Extents is the grid size in cells. D is the number of height bands.
type Extents struct {
	W, H, D int
}

// Cells returns the total cell count.
func (e Extents) Cells() int {
	return e.W * e.H * e.D
}

// Valid reports whether every axis has at least one cell.
func (e Extents) Valid() bool {
	return e.W > 0 && e.H > 0 && e.D > 0
}

// FieldGrid holds miasma pressure and flow for the playable volume.
// Pressure and Velocity are dense arrays indexed by (z*H + y)*W + x.
// Velocity is planar; the Z axis is a coarse height band, not a flow axis.
type FieldGrid struct {
	Ext        Extents
	CellSize   float32 // world units per cell on X/Y
	BandHeight float32 // world units per Z band

	Pressure []float32
	Velocity []Vec2
}

// NewFieldGrid allocates a zeroed grid.
func NewFieldGrid(ext Extents, cellSize, bandHeight float32) *FieldGrid {
	if !ext.Valid() {
		panic(fmt.Sprintf("systems: invalid grid extents %+v", ext))
	}
	n := ext.Cells()
	return newFieldGrid(ext, cellSize, bandHeight, make([]float32, n), make([]Vec2, n))
}

// NewFieldGridFrom wraps existing arrays. Mismatched lengths are a programming
// error and panic here rather than surfacing as bad samples later.
func NewFieldGridFrom(ext Extents, cellSize, bandHeight float32, pressure []float32, velocity []Vec2) *FieldGrid {
	if !ext.Valid() {
		panic(fmt.Sprintf("systems: invalid grid extents %+v", ext))
	}
	if len(pressure) != ext.Cells() || len(velocity) != ext.Cells() {
		panic(fmt.Sprintf("systems: grid arrays mismatched: extents %+v want %d cells, pressure=%d velocity=%d",
			ext, ext.Cells(), len(pressure), len(velocity)))
	}
	return newFieldGrid(ext, cellSize, bandHeight, pressure, velocity)
}

func newFieldGrid(ext Extents, cellSize, bandHeight float32, pressure []float32, velocity []Vec2) *FieldGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	if bandHeight <= 0 {
		bandHeight = 1
	}
	return &FieldGrid{
		Ext:        ext,
		CellSize:   cellSize,
		BandHeight: bandHeight,
		Pressure:   pressure,
		Velocity:   velocity,
	}
}

// Index returns the flat index of cell (x, y, z). Coordinates must be in range.
func (g *FieldGrid) Index(x, y, z int) int {
	return (z*g.Ext.H+y)*g.Ext.W + x
}

// Coords is the inverse of Index.
func (g *FieldGrid) Coords(i int) (x, y, z int) {
	x = i % g.Ext.W
	y = (i / g.Ext.W) % g.Ext.H
	z = i / (g.Ext.W * g.Ext.H)
	return x, y, z
}

// InBounds reports whether (x, y, z) addresses a cell.
func (g *FieldGrid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Ext.W && y < g.Ext.H && z < g.Ext.D
}

// WorldSize returns the world-space size of the grid volume.
func (g *FieldGrid) WorldSize() Vec3 {
	return Vec3{
		X: float32(g.Ext.W) * g.CellSize,
		Y: float32(g.Ext.H) * g.CellSize,
		Z: float32(g.Ext.D) * g.BandHeight,
	}
}

// CellAt maps a world position to the nearest valid cell.
func (g *FieldGrid) CellAt(p Vec3) (x, y, z int) {
	x = clampCell(p.X/g.CellSize, g.Ext.W)
	y = clampCell(p.Y/g.CellSize, g.Ext.H)
	z = clampCell(p.Z/g.BandHeight, g.Ext.D)
	return x, y, z
}

// CellCenter returns the world position at the middle of cell (x, y, z).
func (g *FieldGrid) CellCenter(x, y, z int) Vec3 {
	return Vec3{
		X: (float32(x) + 0.5) * g.CellSize,
		Y: (float32(y) + 0.5) * g.CellSize,
		Z: (float32(z) + 0.5) * g.BandHeight,
	}
}

// ClampPosition pulls p inside the grid volume.
func (g *FieldGrid) ClampPosition(p Vec3) Vec3 {
	size := g.WorldSize()
	return Vec3{
		X: clampCoord(p.X, size.X),
		Y: clampCoord(p.Y, size.Y),
		Z: clampCoord(p.Z, size.Z),
	}
}

// PressureAt returns the pressure of a cell, clamping coordinates into range.
func (g *FieldGrid) PressureAt(x, y, z int) float32 {
	x = clampInt(x, 0, g.Ext.W-1)
	y = clampInt(y, 0, g.Ext.H-1)
	z = clampInt(z, 0, g.Ext.D-1)
	return g.Pressure[g.Index(x, y, z)]
}

// SetPressure writes a cell if it is in range. Out of range writes are ignored.
func (g *FieldGrid) SetPressure(x, y, z int, p float32) {
	if !g.InBounds(x, y, z) {
		return
	}
	g.Pressure[g.Index(x, y, z)] = p
}

// SamplePressure bilinearly interpolates pressure on the X/Y plane of the
// band containing p. Never fails; positions outside the grid are clamped.
func (g *FieldGrid) SamplePressure(p Vec3) float32 {
	i00, i10, i01, i11, tx, ty := g.bilinear(p)
	a := g.Pressure[i00] + (g.Pressure[i10]-g.Pressure[i00])*tx
	b := g.Pressure[i01] + (g.Pressure[i11]-g.Pressure[i01])*tx
	return a + (b-a)*ty
}

// SampleVelocity bilinearly interpolates velocity like SamplePressure.
func (g *FieldGrid) SampleVelocity(p Vec3) Vec2 {
	i00, i10, i01, i11, tx, ty := g.bilinear(p)
	v00, v10, v01, v11 := g.Velocity[i00], g.Velocity[i10], g.Velocity[i01], g.Velocity[i11]
	ax := v00.X + (v10.X-v00.X)*tx
	ay := v00.Y + (v10.Y-v00.Y)*tx
	bx := v01.X + (v11.X-v01.X)*tx
	by := v01.Y + (v11.Y-v01.Y)*tx
	return Vec2{X: ax + (bx-ax)*ty, Y: ay + (by-ay)*ty}
}

// bilinear returns the four neighbouring cell indices around p (cell centres
// as sample points) and the interpolation weights.
func (g *FieldGrid) bilinear(p Vec3) (i00, i10, i01, i11 int, tx, ty float32) {
	fx := clampCoord(p.X/g.CellSize-0.5, float32(g.Ext.W-1))
	fy := clampCoord(p.Y/g.CellSize-0.5, float32(g.Ext.H-1))
	z := clampCell(p.Z/g.BandHeight, g.Ext.D)

	x0 := int(fx)
	y0 := int(fy)
	x1 := min(x0+1, g.Ext.W-1)
	y1 := min(y0+1, g.Ext.H-1)
	tx = fx - float32(x0)
	ty = fy - float32(y0)

	i00 = g.Index(x0, y0, z)
	i10 = g.Index(x1, y0, z)
	i01 = g.Index(x0, y1, z)
	i11 = g.Index(x1, y1, z)
	return i00, i10, i01, i11, tx, ty
}

// TotalPressure sums pressure over every cell.
func (g *FieldGrid) TotalPressure() float32 {
	// Pressure is kept non-negative, so the absolute sum is the sum
	return blas32.Asum(blas32.Vector{N: len(g.Pressure), Inc: 1, Data: g.Pressure})
}

// CopyPressure copies pressure into dst, growing it if needed.
func (g *FieldGrid) CopyPressure(dst []float32) []float32 {
	if cap(dst) < len(g.Pressure) {
		dst = make([]float32, len(g.Pressure))
	}
	dst = dst[:len(g.Pressure)]
	blas32.Copy(
		blas32.Vector{N: len(g.Pressure), Inc: 1, Data: g.Pressure},
		blas32.Vector{N: len(dst), Inc: 1, Data: dst},
	)
	return dst
}

// Reset zeroes pressure and velocity.
func (g *FieldGrid) Reset() {
	clear(g.Pressure)
	clear(g.Velocity)
}

// clampCell maps a continuous cell coordinate to [0, n-1].
func clampCell(c float32, n int) int {
	if c != c || c < 0 {
		return 0
	}
	if c >= float32(n) {
		return n - 1
	}
	return int(math.Floor(float64(c)))
}

// clampCoord clamps v to [0, hi], mapping NaN to 0.
func clampCoord(v, hi float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
