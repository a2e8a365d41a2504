package template

import (
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/bedforge/internal/decode"
	"github.com/matzehuels/bedforge/pkg/errors"
)

// Format is the serialization of a template document.
type Format = decode.Format

// Supported template formats.
const (
	FormatJSON = decode.FormatJSON
	FormatYAML = decode.FormatYAML
	FormatTOML = decode.FormatTOML
)

// Parse decodes and validates a template document. The returned error is a
// *errors.Error whose Field points at the offending value.
func Parse(data []byte, format Format) (*Template, error) {
	doc, err := decode.Document(data, format)
	if err != nil {
		return nil, err
	}
	return FromMap(doc)
}

// ParseFile reads a template, picking the format from the file extension.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(data, decode.FormatFromPath(path))
}

// FromMap builds a template from an already decoded document and validates it.
func FromMap(doc map[string]any) (*Template, error) {
	root := decode.Root(doc)
	t := &Template{}

	bed, err := root.Object("bed")
	if err != nil {
		return nil, err
	}
	if err := parseBed(bed, &t.Bed); err != nil {
		return nil, err
	}

	part, err := root.Object("part")
	if err != nil {
		return nil, err
	}
	if err := parsePart(part, &t.Part); err != nil {
		return nil, err
	}

	tiling, err := root.Object("tiling")
	if err != nil {
		return nil, err
	}
	if err := parseTiling(tiling, &t.Tiling); err != nil {
		return nil, err
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseBed(o decode.Object, b *Bed) (err error) {
	if b.WidthMM, err = o.Float("width_mm"); err != nil {
		return err
	}
	if b.HeightMM, err = o.Float("height_mm"); err != nil {
		return err
	}
	if m, ok, err := o.OptObject("margin_mm"); err != nil {
		return err
	} else if ok {
		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"left", &b.Margin.Left},
			{"top", &b.Margin.Top},
			{"right", &b.Margin.Right},
			{"bottom", &b.Margin.Bottom},
		} {
			if *f.dst, err = m.OptFloat(f.key, 0); err != nil {
				return err
			}
		}
	}
	if b.OriginMarker, err = o.OptBool("origin_marker", true); err != nil {
		return err
	}
	if b.OriginXMM, err = o.OptFloat("origin_x_mm", 0); err != nil {
		return err
	}
	b.OriginYMM, err = o.OptFloat("origin_y_mm", 0)
	return err
}

func parsePart(o decode.Object, p *Part) (err error) {
	if p.WidthMM, err = o.Float("width_mm"); err != nil {
		return err
	}
	if p.HeightMM, err = o.Float("height_mm"); err != nil {
		return err
	}
	if !o.Has("elements") {
		return nil
	}
	list, err := o.List("elements")
	if err != nil {
		return err
	}
	p.Elements = make([]Element, 0, len(list))
	for i, raw := range list {
		eo, err := o.Item("elements", i, raw)
		if err != nil {
			return err
		}
		e, err := parseElement(eo)
		if err != nil {
			return err
		}
		p.Elements = append(p.Elements, e)
	}
	return nil
}

func parseTiling(o decode.Object, t *Tiling) (err error) {
	if t.Rows, err = o.Int("rows"); err != nil {
		return err
	}
	if t.Cols, err = o.Int("cols"); err != nil {
		return err
	}
	if t.GapXMM, err = o.OptFloat("gap_x_mm", 0); err != nil {
		return err
	}
	if t.GapYMM, err = o.OptFloat("gap_y_mm", 0); err != nil {
		return err
	}
	if t.OffsetXMM, err = o.OptFloat("offset_x_mm", 0); err != nil {
		return err
	}
	t.OffsetYMM, err = o.OptFloat("offset_y_mm", 0)
	return err
}

func parseElement(o decode.Object) (e Element, err error) {
	kind, err := o.String("type")
	if err != nil {
		return e, err
	}
	e.Kind = Kind(kind)
	if !slices.Contains(kinds, e.Kind) {
		return e, errors.Invalid(errors.ErrCodeInvalidEnum, o.Field("type"), "unknown element type %q (must be text, image or graphic)", kind)
	}
	if e.ID, err = o.String("id"); err != nil {
		return e, err
	}
	if e.Box.X, err = o.Float("x_mm"); err != nil {
		return e, err
	}
	if e.Box.Y, err = o.Float("y_mm"); err != nil {
		return e, err
	}
	if e.Box.W, err = o.Float("w_mm"); err != nil {
		return e, err
	}
	if e.Box.H, err = o.Float("h_mm"); err != nil {
		return e, err
	}
	if e.AnchorTo, err = o.OptString("anchor_to", ""); err != nil {
		return e, err
	}
	ap, err := o.OptString("anchor_point", string(AnchorTop))
	if err != nil {
		return e, err
	}
	e.AnchorPoint = AnchorPoint(ap)
	if e.Editable, err = o.OptBool("editable", true); err != nil {
		return e, err
	}
	if e.Fallbacks, err = o.OptStrings("fallbacks"); err != nil {
		return e, err
	}

	switch e.Kind {
	case KindText:
		e.Text, err = parseText(o)
	case KindImage:
		e.Image, err = parseImage(o)
	case KindGraphic:
		e.Graphic, err = parseGraphic(o)
	}
	return e, err
}

func parseText(o decode.Object) (s *TextSpec, err error) {
	s = &TextSpec{}
	if s.FontFamily, err = o.OptString("font_family", DefaultFontFamily); err != nil {
		return nil, err
	}
	if s.FontSizePt, err = o.Float("font_size_pt"); err != nil {
		return nil, err
	}
	align, err := o.OptString("text_align", string(AlignCenter))
	if err != nil {
		return nil, err
	}
	s.Align = TextAlign(align)
	if s.Multiline, err = o.OptBool("multiline", false); err != nil {
		return nil, err
	}
	if s.LineSpacing, err = o.OptFloat("line_spacing", DefaultLineSpacing); err != nil {
		return nil, err
	}
	return s, nil
}

func parseImage(o decode.Object) (s *ImageSpec, err error) {
	s = &ImageSpec{}
	fit, err := o.OptString("fit", string(FitCover))
	if err != nil {
		return nil, err
	}
	s.Fit = Fit(fit)
	if c, ok, err := o.OptObject("clip_shape"); err != nil {
		return nil, err
	} else if ok {
		clip := &ClipShape{}
		if clip.Kind, err = c.OptString("kind", ClipRoundedRect); err != nil {
			return nil, err
		}
		if clip.RadiusMM, err = c.Float("radius_mm"); err != nil {
			return nil, err
		}
		s.Clip = clip
	}
	if s.FrameSource, err = o.OptString("frame_source", ""); err != nil {
		return nil, err
	}
	if s.BorderWidthMM, err = o.OptFloat("border_width_mm", 0); err != nil {
		return nil, err
	}
	return s, nil
}

func parseGraphic(o decode.Object) (*GraphicSpec, error) {
	src, err := o.OptString("source", "")
	if err != nil {
		return nil, err
	}
	return &GraphicSpec{Source: src}, nil
}
