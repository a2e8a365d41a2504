package plate

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/bedforge/pkg/anchor"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// originMarkerMM is the side of the square drawn at the bed's bottom-left.
const originMarkerMM = 0.1

// Drawing is the rendered SVG for one bed.
type Drawing struct {
	SVG      []byte           `json:"svg"`
	Warnings []errors.Warning `json:"warnings,omitempty"`
	// Tiles is the number of tile groups emitted.
	Tiles int `json:"tiles"`
}

type placedSlot struct {
	slot   *content.Slot
	row    int
	col    int
	origin geom.Point
}

type renderer struct {
	buf      bytes.Buffer
	tpl      *template.Template
	cfg      config
	boxes    map[string]geom.Box
	order    []*template.Element
	warnings []errors.Warning
}

// RenderBed renders the content of one bed. The template and content are
// validated first; on failure no drawing is produced. Content gaps and
// unresolved assets are reported as warnings.
func RenderBed(tpl *template.Template, set *content.Set, opts ...Option) (*Drawing, error) {
	cfg := newConfig(opts...)
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if set == nil {
		set = &content.Set{}
	}
	if err := set.Validate(&tpl.Part); err != nil {
		return nil, err
	}
	boxes, err := anchor.Resolve(&tpl.Part)
	if err != nil {
		return nil, err
	}
	slots, err := placeSlots(tpl, set, cfg.tiles)
	if err != nil {
		return nil, err
	}

	r := &renderer{tpl: tpl, cfg: cfg, boxes: boxes, order: tpl.Part.ZOrder()}
	r.header()
	for _, s := range slots {
		r.tile(s)
	}
	r.buf.WriteString("</svg>\n")

	return &Drawing{SVG: r.buf.Bytes(), Warnings: r.warnings, Tiles: len(slots)}, nil
}

func placeSlots(tpl *template.Template, set *content.Set, tiles map[int]Tile) ([]placedSlot, error) {
	capacity := tpl.Tiling.Capacity()
	out := make([]placedSlot, 0, len(set.Slots))
	for i := range set.Slots {
		s := &set.Slots[i]
		if t, ok := tiles[s.Index]; ok {
			out = append(out, placedSlot{slot: s, row: t.Row, col: t.Col, origin: t.Origin})
			continue
		}
		if s.Index >= capacity {
			return nil, errors.Invalid(errors.ErrCodeInvalidRange, errors.Path("slots", i, "slot_index"),
				"slot %d is outside the %dx%d tiling", s.Index, tpl.Tiling.Rows, tpl.Tiling.Cols)
		}
		row, col := tpl.Tiling.SlotPosition(s.Index)
		out = append(out, placedSlot{slot: s, row: row, col: col, origin: tpl.TileOrigin(row, col)})
	}
	slices.SortFunc(out, func(a, b placedSlot) int { return cmp.Compare(a.slot.Index, b.slot.Index) })
	return out, nil
}

func (r *renderer) warn(code errors.Code, slot int, elem, format string, args ...any) {
	r.warnings = append(r.warnings, errors.Warning{Code: code, Slot: slot, Element: elem, Message: fmt.Sprintf(format, args...)})
}

func (r *renderer) header() {
	bed, part, tl := r.tpl.Bed, r.tpl.Part, r.tpl.Tiling
	w, h := geom.Num(bed.WidthMM), geom.Num(bed.HeightMM)
	fmt.Fprintf(&r.buf, `<svg width="%smm" height="%smm" viewBox="0 0 %s %s" xmlns="http://www.w3.org/2000/svg">`+"\n", w, h, w, h)

	if r.cfg.metadata {
		if r.cfg.bedIndex >= 0 {
			fmt.Fprintf(&r.buf, "  <!-- Bed %d: %smm x %smm -->\n", r.cfg.bedIndex, w, h)
		} else {
			fmt.Fprintf(&r.buf, "  <!-- Bed: %smm x %smm -->\n", w, h)
		}
		fmt.Fprintf(&r.buf, "  <!-- Part: %smm x %smm -->\n", geom.Num(part.WidthMM), geom.Num(part.HeightMM))
		fmt.Fprintf(&r.buf, "  <!-- Tiling: %d rows x %d cols -->\n", tl.Rows, tl.Cols)
	}

	if bed.OriginMarker {
		fmt.Fprintf(&r.buf, `  <rect id="origin-marker" x="%s" y="%s" width="%s" height="%s" fill="black"/>`+"\n",
			geom.Num(bed.OriginXMM), geom.Num(bed.HeightMM-originMarkerMM), geom.Num(originMarkerMM), geom.Num(originMarkerMM))
		if r.cfg.metadata {
			fmt.Fprintf(&r.buf, "  <!-- Origin marker at (%s, %s) -->\n", geom.Num(bed.OriginXMM), geom.Num(bed.OriginYMM))
		}
	}
}

func (r *renderer) tile(s placedSlot) {
	fmt.Fprintf(&r.buf, `  <g id="%s" transform="translate(%s,%s)">`+"\n",
		geom.TileID(s.row, s.col), geom.Num(s.origin.X), geom.Num(s.origin.Y))

	for _, e := range r.order {
		box := r.boxes[e.ID]
		v, ok := s.slot.Get(e.ID)
		t := tileRef{slot: s.slot.Index, row: s.row, col: s.col}
		switch e.Kind {
		case template.KindImage:
			r.image(t, e, box, v, ok)
		case template.KindText:
			r.text(t, e, box, v, ok)
		case template.KindGraphic:
			r.graphic(t, e, box, v, ok)
		}
	}

	r.buf.WriteString("  </g>\n")
}

// tileRef identifies the tile an element instance belongs to.
type tileRef struct {
	slot int
	row  int
	col  int
}

func (t tileRef) id(prefix, elem string) string { return geom.ElementID(prefix, t.row, t.col, elem) }

func editableAttr(e *template.Element) string {
	if e.Editable {
		return ""
	}
	return ` data-editable="false"`
}

func boxAttrs(b geom.Box) string {
	return fmt.Sprintf(`x="%s" y="%s" width="%s" height="%s"`, geom.Num(b.X), geom.Num(b.Y), geom.Num(b.W), geom.Num(b.H))
}
