package systems

import "sync"

// VisibilitySource reports how visible effects should be at a position, in
// [0,1]. It is owned by the lighting side and may lag the field by a tick.
// Implementations must tolerate concurrent readers.
type VisibilitySource interface {
	VisibilityAt(p Vec3) float32
}

// VisibilityFunc adapts a function to VisibilitySource.
type VisibilityFunc func(p Vec3) float32

// VisibilityAt calls f(p).
func (f VisibilityFunc) VisibilityAt(p Vec3) float32 { return f(p) }

// FullVisibility treats every position as fully lit.
var FullVisibility VisibilitySource = VisibilityFunc(func(Vec3) float32 { return 1 })

// LightMap is a per-cell explored/lit scalar laid over the same cells as a
// FieldGrid. Writers (the lighting side) and the animator may run on
// different goroutines, so access is guarded.
type LightMap struct {
	mu         sync.RWMutex
	ext        Extents
	cellSize   float32
	bandHeight float32
	values     []float32
}

// NewLightMap creates a dark light map.
func NewLightMap(ext Extents, cellSize, bandHeight float32) *LightMap {
	if cellSize <= 0 {
		cellSize = 1
	}
	if bandHeight <= 0 {
		bandHeight = 1
	}
	return &LightMap{
		ext:        ext,
		cellSize:   cellSize,
		bandHeight: bandHeight,
		values:     make([]float32, ext.Cells()),
	}
}

// NewLightMapFor creates a light map matching grid.
func NewLightMapFor(grid *FieldGrid) *LightMap {
	return NewLightMap(grid.Ext, grid.CellSize, grid.BandHeight)
}

func (m *LightMap) index(p Vec3) int {
	x := clampCell(p.X/m.cellSize, m.ext.W)
	y := clampCell(p.Y/m.cellSize, m.ext.H)
	z := clampCell(p.Z/m.bandHeight, m.ext.D)
	return (z*m.ext.H+y)*m.ext.W + x
}

// VisibilityAt returns the cell value under p, clamped into the map.
func (m *LightMap) VisibilityAt(p Vec3) float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.values) == 0 {
		return 0
	}
	return m.values[m.index(p)]
}

// Set assigns the value of the cell under p.
func (m *LightMap) Set(p Vec3, v float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.values) == 0 {
		return
	}
	m.values[m.index(p)] = clamp01(v)
}

// Reveal raises cells within radius of p (on p's floor) toward strength with
// a linear falloff. Values never decrease.
func (m *LightMap) Reveal(p Vec3, radius, strength float32) {
	if radius <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.values) == 0 {
		return
	}

	z := clampCell(p.Z/m.bandHeight, m.ext.D)
	cr := int(radius/m.cellSize) + 1
	cx := clampCell(p.X/m.cellSize, m.ext.W)
	cy := clampCell(p.Y/m.cellSize, m.ext.H)

	for y := max(0, cy-cr); y <= min(m.ext.H-1, cy+cr); y++ {
		for x := max(0, cx-cr); x <= min(m.ext.W-1, cx+cr); x++ {
			dx := (float32(x)+0.5)*m.cellSize - p.X
			dy := (float32(y)+0.5)*m.cellSize - p.Y
			d2 := dx*dx + dy*dy
			if d2 > radius*radius {
				continue
			}
			falloff := 1 - d2/(radius*radius)
			v := clamp01(strength * falloff)
			i := (z*m.ext.H+y)*m.ext.W + x
			if v > m.values[i] {
				m.values[i] = v
			}
		}
	}
}

// Floor copies the values of one floor into dst, row-major, and returns it.
func (m *LightMap) Floor(z int, dst []float32) []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := m.ext.W * m.ext.H
	dst = dst[:0]
	if z < 0 || z >= m.ext.D {
		return dst
	}
	return append(dst, m.values[z*n:(z+1)*n]...)
}

// Fade multiplies every cell by keep, e.g. to let explored areas dim again.
func (m *LightMap) Fade(keep float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep = clamp01(keep)
	for i := range m.values {
		m.values[i] *= keep
	}
}
