package template

import (
	"slices"
	"strings"

	"github.com/matzehuels/bedforge/pkg/dag"
	"github.com/matzehuels/bedforge/pkg/errors"
)

// fitTolerance absorbs float noise when checking that a part fits the bed.
const fitTolerance = 1e-6

// Validate checks ranges, enums, element ids, the anchor graph and bed
// capacity. It returns the first problem found as a *errors.Error.
// Validate never modifies t; zero enum values mean the documented default.
func (t *Template) Validate() error {
	if err := t.validateBed(); err != nil {
		return err
	}
	if err := t.validateTiling(); err != nil {
		return err
	}
	if err := t.Part.validate(); err != nil {
		return err
	}
	return t.validateCapacity()
}

func (t *Template) validateBed() error {
	b := t.Bed
	if b.WidthMM <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "bed.width_mm", "must be > 0, got %v", b.WidthMM)
	}
	if b.HeightMM <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "bed.height_mm", "must be > 0, got %v", b.HeightMM)
	}
	for _, m := range []struct {
		name string
		v    float64
	}{
		{"left", b.Margin.Left},
		{"top", b.Margin.Top},
		{"right", b.Margin.Right},
		{"bottom", b.Margin.Bottom},
	} {
		if m.v < 0 {
			return errors.Invalid(errors.ErrCodeInvalidRange, errors.Path("bed", "margin_mm", m.name), "must be >= 0, got %v", m.v)
		}
	}
	return nil
}

func (t *Template) validateTiling() error {
	tl := t.Tiling
	if tl.Rows <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "tiling.rows", "must be > 0, got %d", tl.Rows)
	}
	if tl.Cols <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "tiling.cols", "must be > 0, got %d", tl.Cols)
	}
	if tl.GapXMM < 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, "tiling.gap_x_mm", "must be >= 0, got %v", tl.GapXMM)
	}
	if tl.GapYMM < 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, "tiling.gap_y_mm", "must be >= 0, got %v", tl.GapYMM)
	}
	return nil
}

// validateCapacity requires that at least one part fits inside the bed
// margins once the tiling offset is applied.
func (t *Template) validateCapacity() error {
	area := t.Bed.PrintableArea()
	origin := t.TileOrigin(0, 0)
	if origin.X+t.Part.WidthMM > area.Right()+fitTolerance {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "part.width_mm",
			"part of %vmm does not fit the bed (%vmm printable from x=%v)", t.Part.WidthMM, area.W, origin.X)
	}
	if origin.Y+t.Part.HeightMM > area.Bottom()+fitTolerance {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "part.height_mm",
			"part of %vmm does not fit the bed (%vmm printable from y=%v)", t.Part.HeightMM, area.H, origin.Y)
	}
	return nil
}

// Validate checks the part dimensions, every element and the anchor graph.
func (p *Part) Validate() error { return p.validate() }

func (p *Part) validate() error {
	if p.WidthMM <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "part.width_mm", "must be > 0, got %v", p.WidthMM)
	}
	if p.HeightMM <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidCapacity, "part.height_mm", "must be > 0, got %v", p.HeightMM)
	}
	for i := range p.Elements {
		if err := p.Elements[i].validate(errors.Path("part", "elements", i)); err != nil {
			return err
		}
	}
	_, err := p.AnchorGraph()
	return err
}

func (e *Element) validate(path string) error {
	field := func(name string) string { return errors.Path(path, name) }

	if !slices.Contains(kinds, e.Kind) {
		return errors.Invalid(errors.ErrCodeInvalidEnum, field("type"), "unknown element type %q", e.Kind)
	}
	if e.ID == "" {
		return errors.Invalid(errors.ErrCodeInvalidSchema, field("id"), "must not be empty")
	}
	if strings.ContainsAny(e.ID, " \t\n\"'<>&") {
		return errors.Invalid(errors.ErrCodeInvalidFormat, field("id"), "%q contains characters not allowed in an identifier", e.ID)
	}
	if e.Box.W <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, field("w_mm"), "must be > 0, got %v", e.Box.W)
	}
	if e.Box.H <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, field("h_mm"), "must be > 0, got %v", e.Box.H)
	}
	if e.AnchorPoint != "" && !slices.Contains(anchorPoints, e.AnchorPoint) {
		return errors.Invalid(errors.ErrCodeInvalidEnum, field("anchor_point"),
			"unknown anchor point %q (must be top, bottom, left, right or center)", e.AnchorPoint)
	}

	variants := 0
	for _, set := range []bool{e.Text != nil, e.Image != nil, e.Graphic != nil} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return errors.Invalid(errors.ErrCodeInvalidSchema, path, "%s element must carry exactly one variant", e.Kind)
	}

	switch e.Kind {
	case KindText:
		if e.Text == nil {
			return errors.Invalid(errors.ErrCodeInvalidSchema, path, "text element without text fields")
		}
		return e.Text.validate(field)
	case KindImage:
		if e.Image == nil {
			return errors.Invalid(errors.ErrCodeInvalidSchema, path, "image element without image fields")
		}
		return e.Image.validate(field)
	case KindGraphic:
		if e.Graphic == nil {
			return errors.Invalid(errors.ErrCodeInvalidSchema, path, "graphic element without graphic fields")
		}
	}
	return nil
}

func (s *TextSpec) validate(field func(string) string) error {
	if s.FontSizePt <= 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, field("font_size_pt"), "must be > 0, got %v", s.FontSizePt)
	}
	if s.Align != "" && !slices.Contains(alignments, s.Align) {
		return errors.Invalid(errors.ErrCodeInvalidEnum, field("text_align"), "unknown alignment %q (must be left, center or right)", s.Align)
	}
	if s.LineSpacing < 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, field("line_spacing"), "must be > 0, got %v", s.LineSpacing)
	}
	return nil
}

func (s *ImageSpec) validate(field func(string) string) error {
	if s.Fit != "" && !slices.Contains(fits, s.Fit) {
		return errors.Invalid(errors.ErrCodeInvalidEnum, field("fit"), "unknown fit %q (must be cover or contain)", s.Fit)
	}
	if s.BorderWidthMM < 0 {
		return errors.Invalid(errors.ErrCodeInvalidRange, field("border_width_mm"), "must be >= 0, got %v", s.BorderWidthMM)
	}
	if c := s.Clip; c != nil {
		if c.Kind != "" && c.Kind != ClipRoundedRect {
			return errors.Invalid(errors.ErrCodeInvalidEnum, errors.Path(field("clip_shape"), "kind"), "unknown clip shape %q (must be rounded_rect)", c.Kind)
		}
		if c.RadiusMM < 0 {
			return errors.Invalid(errors.ErrCodeInvalidRange, errors.Path(field("clip_shape"), "radius_mm"), "must be >= 0, got %v", c.RadiusMM)
		}
	}
	return nil
}

// AnchorGraph builds the anchor DAG of the part: one node per element in
// authoring order and an edge from each anchor target to the element anchored
// on it. Duplicate ids, unknown targets and cycles are reported as graph errors.
func (p *Part) AnchorGraph() (*dag.DAG, error) {
	g := dag.New()
	for i := range p.Elements {
		e := &p.Elements[i]
		err := g.AddNode(dag.Node{
			ID:    e.ID,
			Label: e.ID + " (" + string(e.Kind) + ")",
			Meta:  dag.Metadata{"kind": string(e.Kind), "index": i},
		})
		switch err {
		case nil:
		case dag.ErrDuplicateNodeID:
			return nil, errors.Invalid(errors.ErrCodeDuplicateElement, errors.Path("part", "elements", i, "id"), "duplicate element id %q", e.ID)
		default:
			return nil, errors.Invalid(errors.ErrCodeInvalidSchema, errors.Path("part", "elements", i, "id"), "%v", err)
		}
	}
	for i := range p.Elements {
		e := &p.Elements[i]
		if !e.IsAnchored() {
			continue
		}
		path := errors.Path("part", "elements", i, "anchor_to")
		if e.AnchorTo == e.ID {
			return nil, errors.Invalid(errors.ErrCodeAnchorCycle, path, "element %q is anchored to itself", e.ID)
		}
		if err := g.AddEdge(dag.Edge{From: e.AnchorTo, To: e.ID, Label: string(e.AnchorPoint)}); err != nil {
			return nil, errors.Invalid(errors.ErrCodeUnknownAnchor, path, "element %q is anchored to unknown element %q", e.ID, e.AnchorTo)
		}
	}
	if cycle := g.FindCycle(); cycle != nil {
		return nil, errors.Invalid(errors.ErrCodeAnchorCycle, "part.elements", "anchor cycle: %s", strings.Join(cycle, " -> "))
	}
	return g, nil
}
