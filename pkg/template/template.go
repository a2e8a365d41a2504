package template

import (
	"github.com/matzehuels/bedforge/pkg/geom"
)

// Template is a complete layout: one bed, one part and the tiling that repeats
// the part across the bed.
type Template struct {
	Bed    Bed    `json:"bed"`
	Part   Part   `json:"part"`
	Tiling Tiling `json:"tiling"`
}

// Margin is the unprintable border of a bed in millimetres.
type Margin struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Bed is the physical print surface.
type Bed struct {
	WidthMM      float64 `json:"width_mm"`
	HeightMM     float64 `json:"height_mm"`
	Margin       Margin  `json:"margin_mm"`
	OriginMarker bool    `json:"origin_marker"`
	OriginXMM    float64 `json:"origin_x_mm"`
	OriginYMM    float64 `json:"origin_y_mm"`
}

// Part is the repeatable unit placed into each tile.
type Part struct {
	WidthMM  float64   `json:"width_mm"`
	HeightMM float64   `json:"height_mm"`
	Elements []Element `json:"elements"`
}

// Tiling describes how parts repeat on a bed.
type Tiling struct {
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	GapXMM    float64 `json:"gap_x_mm"`
	GapYMM    float64 `json:"gap_y_mm"`
	OffsetXMM float64 `json:"offset_x_mm"`
	OffsetYMM float64 `json:"offset_y_mm"`
}

// Capacity returns the number of slots per bed.
func (t Tiling) Capacity() int {
	if t.Rows <= 0 || t.Cols <= 0 {
		return 0
	}
	return t.Rows * t.Cols
}

// SlotPosition maps a slot index to its grid cell in row-major order.
func (t Tiling) SlotPosition(slot int) (row, col int) {
	if t.Cols <= 0 {
		return 0, 0
	}
	return slot / t.Cols, slot % t.Cols
}

// SlotIndex is the inverse of SlotPosition.
func (t Tiling) SlotIndex(row, col int) int {
	return row*t.Cols + col
}

// TileOrigin returns the top-left corner of the tile at (row, col) in bed space.
func (t *Template) TileOrigin(row, col int) geom.Point {
	return geom.Point{
		X: t.Bed.Margin.Left + t.Tiling.OffsetXMM + float64(col)*(t.Part.WidthMM+t.Tiling.GapXMM),
		Y: t.Bed.Margin.Top + t.Tiling.OffsetYMM + float64(row)*(t.Part.HeightMM+t.Tiling.GapYMM),
	}
}

// SlotBox returns the rectangle a slot occupies on the bed.
func (t *Template) SlotBox(slot int) geom.Box {
	row, col := t.Tiling.SlotPosition(slot)
	o := t.TileOrigin(row, col)
	return geom.Box{X: o.X, Y: o.Y, W: t.Part.WidthMM, H: t.Part.HeightMM}
}

// PrintableArea returns the bed minus its margins.
func (b Bed) PrintableArea() geom.Box {
	return geom.Box{
		X: b.Margin.Left,
		Y: b.Margin.Top,
		W: b.WidthMM - b.Margin.Left - b.Margin.Right,
		H: b.HeightMM - b.Margin.Top - b.Margin.Bottom,
	}
}

// Element returns the element with the given id.
func (p *Part) Element(id string) (*Element, bool) {
	for i := range p.Elements {
		if p.Elements[i].ID == id {
			return &p.Elements[i], true
		}
	}
	return nil, false
}

// ZOrder returns the elements in render order: images, then text, then
// graphics. Authoring order is preserved within each kind.
func (p *Part) ZOrder() []*Element {
	out := make([]*Element, 0, len(p.Elements))
	for _, k := range []Kind{KindImage, KindText, KindGraphic} {
		for i := range p.Elements {
			if p.Elements[i].Kind == k {
				out = append(out, &p.Elements[i])
			}
		}
	}
	return out
}
