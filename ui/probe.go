package ui

import (
	"fmt"

	"github.com/pthm-cable/miasma/game"
)

// probeSections describes the cell probe panel. Getters receive a
// game.CellProbe.
func probeSections(maxPressure float32) []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID:    "cell",
			Title: "Cell",
			Fields: []FieldDescriptor{
				{ID: "coords", Label: "Cell", Widget: WidgetText, TextGetter: func(d any) string {
					p := d.(game.CellProbe)
					return fmt.Sprintf("%d, %d, %d", p.X, p.Y, p.Z)
				}},
				{ID: "room", Label: "Room", Widget: WidgetText, TextGetter: func(d any) string {
					if r := d.(game.CellProbe).Room; r != "" {
						return string(r)
					}
					return "(none)"
				}},
				{ID: "modifier", Label: "Decay mod", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 {
					return d.(game.CellProbe).Modifier
				}},
			},
		},
		{
			ID:    "field",
			Title: "Field",
			Fields: []FieldDescriptor{
				{ID: "pressure", Label: "Pressure", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: maxPressure}, Getter: func(d any) float32 {
					return d.(game.CellProbe).Pressure
				}},
				{ID: "vx", Label: "Vel X", Widget: WidgetCenteredBar, Range: FieldRange{Min: -1.5, Max: 1.5}, Getter: func(d any) float32 {
					return d.(game.CellProbe).Velocity.X
				}},
				{ID: "vy", Label: "Vel Y", Widget: WidgetCenteredBar, Range: FieldRange{Min: -1.5, Max: 1.5}, Getter: func(d any) float32 {
					return d.(game.CellProbe).Velocity.Y
				}},
			},
		},
		{
			ID:    "wisps",
			Title: "Wisps",
			Fields: []FieldDescriptor{
				{ID: "visibility", Label: "Visibility", Widget: WidgetBar, Range: DefaultRange(), Getter: func(d any) float32 {
					return d.(game.CellProbe).Visibility
				}},
				{ID: "nearby", Label: "Nearby", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(d.(game.CellProbe).NearWisps)
				}},
			},
		},
	}
}

// ProbePanel shows field values under the cursor.
type ProbePanel struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewProbePanel creates a probe panel whose pressure bar spans
// [0, maxPressure].
func NewProbePanel(x, y, width int32, maxPressure float32) *ProbePanel {
	if maxPressure <= 0 {
		maxPressure = 1
	}
	return &ProbePanel{
		renderer: NewRenderer(),
		sections: probeSections(maxPressure),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *ProbePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel for probe and returns the Y below it.
func (p *ProbePanel) Draw(probe game.CellProbe) int32 {
	r := p.renderer
	padding := r.Theme.Padding

	height := padding * 2
	for _, sd := range p.sections {
		height += r.SectionHeight(sd, probe)
	}
	r.DrawPanel(p.x, p.y, p.width, height)

	y := p.y + padding
	for _, sd := range p.sections {
		y = r.DrawSection(p.x+padding, y, sd, probe, p.width-padding*2)
	}
	return p.y + height
}
