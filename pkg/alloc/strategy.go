package alloc

import (
	"math"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Cell is one slot position a strategy offers on every bed.
type Cell struct {
	Slot   int
	Row    int
	Col    int
	Origin *geom.Point
}

// Cells is the ordered set of positions a strategy offers on every bed.
// Implementations compute At lazily where they can, so a large grid costs
// nothing until its slots are filled.
type Cells interface {
	Len() int
	At(slot int) Cell
}

// Strategy decides where on a bed parts go. Every bed produced by one
// strategy offers the same cells; the allocator fills them in order.
type Strategy interface {
	Name() string
	Cells() (Cells, error)
}

// CellList is a materialised Cells.
type CellList []Cell

// Len implements Cells.
func (l CellList) Len() int { return len(l) }

// At implements Cells.
func (l CellList) At(slot int) Cell { return l[slot] }

type grid struct {
	tiling template.Tiling
}

func (g grid) Len() int { return g.tiling.Capacity() }

func (g grid) At(slot int) Cell {
	row, col := g.tiling.SlotPosition(slot)
	return Cell{Slot: slot, Row: row, Col: col}
}

// Strategy names.
const (
	StrategySequential = "sequential"
	StrategyShelf      = "shelf"
)

// Sequential fills the tiling grid in row-major order.
type Sequential struct {
	Tiling template.Tiling
}

// Name implements Strategy.
func (s Sequential) Name() string { return StrategySequential }

// Cells implements Strategy.
func (s Sequential) Cells() (Cells, error) {
	if s.Tiling.Capacity() == 0 {
		return nil, errors.Invalid(errors.ErrCodeInvalidCapacity, "tiling", "rows and cols must be > 0, got %dx%d", s.Tiling.Rows, s.Tiling.Cols)
	}
	return grid{tiling: s.Tiling}, nil
}

// Shelf packs identical parts into horizontal shelves, first fit, left to
// right and top to bottom. A part that would overlap a keep-out is nudged
// right by the gutter until it clears it or runs off the shelf.
type Shelf struct {
	BedWidthMM   float64
	BedHeightMM  float64
	Margin       template.Margin
	PartWidthMM  float64
	PartHeightMM float64
	GutterMM     float64
	Keepouts     []geom.Box
}

// ShelfFor derives a shelf strategy from a template's bed and part.
func ShelfFor(t *template.Template, gutterMM float64, keepouts []geom.Box) Shelf {
	return Shelf{
		BedWidthMM:   t.Bed.WidthMM,
		BedHeightMM:  t.Bed.HeightMM,
		Margin:       t.Bed.Margin,
		PartWidthMM:  t.Part.WidthMM,
		PartHeightMM: t.Part.HeightMM,
		GutterMM:     gutterMM,
		Keepouts:     keepouts,
	}
}

// Name implements Strategy.
func (s Shelf) Name() string { return StrategyShelf }

// minStep keeps the keep-out search moving when the gutter is zero.
const minStep = 1.0

// MaxShelfCells bounds the number of positions one shelf layout may offer.
const MaxShelfCells = 100_000

// Cells implements Strategy.
func (s Shelf) Cells() (Cells, error) {
	if s.PartWidthMM <= 0 || s.PartHeightMM <= 0 {
		return nil, errors.Invalid(errors.ErrCodeInvalidCapacity, "part", "part size must be > 0, got %vx%v", s.PartWidthMM, s.PartHeightMM)
	}
	if s.GutterMM < 0 {
		return nil, errors.Invalid(errors.ErrCodeInvalidRange, "gutter_mm", "must be >= 0, got %v", s.GutterMM)
	}
	step := math.Max(s.GutterMM, minStep)
	right := s.BedWidthMM - s.Margin.Right
	bottom := s.BedHeightMM - s.Margin.Bottom
	w, h := s.PartWidthMM, s.PartHeightMM

	var cells CellList
	row := 0
	for y := s.Margin.Top; y+h <= bottom+fitEps; {
		col := 0
		for x := s.Margin.Left; x+w <= right+fitEps; {
			box := geom.Box{X: x, Y: y, W: w, H: h}
			if s.blocked(box) {
				x += step
				continue
			}
			if len(cells) == MaxShelfCells {
				return nil, errors.Invalid(errors.ErrCodeInvalidCapacity, "part",
					"a %vx%vmm part yields more than %d positions per bed", w, h, MaxShelfCells)
			}
			cells = append(cells, Cell{Slot: len(cells), Row: row, Col: col, Origin: &geom.Point{X: geom.Round(x), Y: geom.Round(y)}})
			col++
			x += w + s.GutterMM
		}
		if col == 0 {
			y += step
			continue
		}
		row++
		y += h + s.GutterMM
	}
	if len(cells) == 0 {
		return nil, errors.Invalid(errors.ErrCodeInvalidCapacity, "keepouts", "no %vx%vmm part fits on the bed outside the keep-out zones", w, h)
	}
	return cells, nil
}

const fitEps = 1e-6

func (s Shelf) blocked(b geom.Box) bool {
	for _, k := range s.Keepouts {
		if b.Overlaps(k) {
			return true
		}
	}
	return false
}
