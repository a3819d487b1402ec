package systems

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed layouts/demo_house.yaml
var demoHouseYAML []byte

// Level is the tile/room collaborator the field is laid over.
type Level interface {
	RoomAt(p Vec3) RoomID
	Extents() Extents
	CellSize() float32
	BandHeight() float32
}

// Emitter is a steady miasma source, in pressure per second.
type Emitter struct {
	Room RoomID
	Pos  Vec3
	Rate float32
}

// EmitterSource is implemented by levels that define miasma sources.
type EmitterSource interface {
	Emitters() []Emitter
}

// RoomSpec describes one room as a cell rectangle on a floor.
// Rect is [x0, y0, x1, y1] with x1/y1 exclusive.
type RoomSpec struct {
	ID       RoomID  `yaml:"id"`
	Floor    int     `yaml:"floor"`
	Rect     [4]int  `yaml:"rect"`
	Modifier float32 `yaml:"modifier"`
}

// EmitterSpec describes a source in cell coordinates.
type EmitterSpec struct {
	Room RoomID     `yaml:"room"`
	Cell [3]float32 `yaml:"cell"`
	Rate float32    `yaml:"rate"`
}

// HouseFile is the on-disk layout format.
type HouseFile struct {
	Name       string        `yaml:"name"`
	Width      int           `yaml:"width"`
	Height     int           `yaml:"height"`
	Floors     int           `yaml:"floors"`
	CellSize   float32       `yaml:"cell_size"`
	BandHeight float32       `yaml:"band_height"`
	Rooms      []RoomSpec    `yaml:"rooms"`
	Emitters   []EmitterSpec `yaml:"emitters"`
}

// HouseLayout is a Level built from a HouseFile. Room lookup is a per-cell
// table, so RoomAt is a constant time read.
type HouseLayout struct {
	name       string
	ext        Extents
	cellSize   float32
	bandHeight float32
	cellRooms  []RoomID
	rooms      []RoomSpec
	emitters   []Emitter
}

// LoadHouseLayout reads and validates a layout file.
func LoadHouseLayout(path string) (*HouseLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return ParseHouseLayout(data)
}

// DemoHouseLayout returns the embedded demo house.
func DemoHouseLayout() *HouseLayout {
	h, err := ParseHouseLayout(demoHouseYAML)
	if err != nil {
		panic(fmt.Sprintf("systems: embedded demo house invalid: %v", err))
	}
	return h
}

// ParseHouseLayout decodes and validates layout YAML.
func ParseHouseLayout(data []byte) (*HouseLayout, error) {
	var f HouseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	return NewHouseLayout(f)
}

// NewHouseLayout validates f and builds the cell room index.
func NewHouseLayout(f HouseFile) (*HouseLayout, error) {
	if f.Floors == 0 {
		f.Floors = 1
	}
	ext := Extents{W: f.Width, H: f.Height, D: f.Floors}
	if !ext.Valid() {
		return nil, fmt.Errorf("layout %q: invalid extents %dx%dx%d", f.Name, f.Width, f.Height, f.Floors)
	}
	if f.CellSize <= 0 {
		f.CellSize = 1
	}
	if f.BandHeight <= 0 {
		f.BandHeight = 1
	}

	h := &HouseLayout{
		name:       f.Name,
		ext:        ext,
		cellSize:   f.CellSize,
		bandHeight: f.BandHeight,
		cellRooms:  make([]RoomID, ext.Cells()),
		rooms:      f.Rooms,
	}

	known := make(map[RoomID]bool, len(f.Rooms))
	for _, r := range f.Rooms {
		if r.ID == NoRoom {
			return nil, fmt.Errorf("layout %q: room with empty id", f.Name)
		}
		x0, y0, x1, y1 := r.Rect[0], r.Rect[1], r.Rect[2], r.Rect[3]
		if x0 < 0 || y0 < 0 || x1 > ext.W || y1 > ext.H || x0 >= x1 || y0 >= y1 {
			return nil, fmt.Errorf("layout %q: room %q rect %v outside %dx%d", f.Name, r.ID, r.Rect, ext.W, ext.H)
		}
		if r.Floor < 0 || r.Floor >= ext.D {
			return nil, fmt.Errorf("layout %q: room %q on floor %d, house has %d", f.Name, r.ID, r.Floor, ext.D)
		}
		known[r.ID] = true
		// Later rooms overwrite earlier ones where they overlap
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				h.cellRooms[(r.Floor*ext.H+y)*ext.W+x] = r.ID
			}
		}
	}

	for _, e := range f.Emitters {
		if !known[e.Room] {
			return nil, fmt.Errorf("layout %q: emitter references unknown room %q", f.Name, e.Room)
		}
		h.emitters = append(h.emitters, Emitter{
			Room: e.Room,
			Pos: Vec3{
				X: e.Cell[0] * f.CellSize,
				Y: e.Cell[1] * f.CellSize,
				Z: e.Cell[2] * f.BandHeight,
			},
			Rate: e.Rate,
		})
	}

	return h, nil
}

// Name returns the layout name.
func (h *HouseLayout) Name() string { return h.name }

// Extents returns the grid extents, one cell per layout cell.
func (h *HouseLayout) Extents() Extents { return h.ext }

// CellSize returns world units per cell.
func (h *HouseLayout) CellSize() float32 { return h.cellSize }

// BandHeight returns world units per floor.
func (h *HouseLayout) BandHeight() float32 { return h.bandHeight }

// Rooms returns the room specs in file order.
func (h *HouseLayout) Rooms() []RoomSpec { return h.rooms }

// Emitters returns the miasma sources.
func (h *HouseLayout) Emitters() []Emitter { return h.emitters }

// RoomAt returns the room containing p, or NoRoom outside every room.
func (h *HouseLayout) RoomAt(p Vec3) RoomID {
	x := clampCell(p.X/h.cellSize, h.ext.W)
	y := clampCell(p.Y/h.cellSize, h.ext.H)
	z := clampCell(p.Z/h.bandHeight, h.ext.D)
	return h.cellRooms[(z*h.ext.H+y)*h.ext.W+x]
}

// Modifiers returns the room modifiers declared in the layout. Rooms with a
// zero modifier in the file keep the neutral default.
func (h *HouseLayout) Modifiers() []RoomModifier {
	out := make([]RoomModifier, 0, len(h.rooms))
	for _, r := range h.rooms {
		m := r.Modifier
		if m == 0 {
			m = DefaultModifier
		}
		out = append(out, RoomModifier{Room: r.ID, Modifier: m})
	}
	return out
}
