package template

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/bedforge/pkg/geom"
)

// Kind tags the element variant.
type Kind string

// Element kinds.
const (
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindGraphic Kind = "graphic"
)

// AnchorPoint selects which point of the referenced box an anchored element
// is positioned from.
type AnchorPoint string

// Anchor points.
const (
	AnchorTop    AnchorPoint = "top"
	AnchorBottom AnchorPoint = "bottom"
	AnchorLeft   AnchorPoint = "left"
	AnchorRight  AnchorPoint = "right"
	AnchorCenter AnchorPoint = "center"
)

// TextAlign is the horizontal alignment of a text element.
type TextAlign string

// Text alignments.
const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Fit is the image scaling policy.
type Fit string

// Fit modes.
const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
)

// ClipRoundedRect is the only supported clip shape kind.
const ClipRoundedRect = "rounded_rect"

// Defaults applied when a field is omitted.
const (
	DefaultFontFamily  = "Times New Roman"
	DefaultLineSpacing = geom.DefaultLineSpacing
)

var (
	kinds        = []Kind{KindText, KindImage, KindGraphic}
	anchorPoints = []AnchorPoint{AnchorTop, AnchorBottom, AnchorLeft, AnchorRight, AnchorCenter}
	alignments   = []TextAlign{AlignLeft, AlignCenter, AlignRight}
	fits         = []Fit{FitCover, FitContain}
)

// Element is one positioned content unit inside a part. Exactly one of Text,
// Image or Graphic is set, matching Kind.
type Element struct {
	Kind Kind
	ID   string
	// Box is the element's rectangle in part space. For anchored elements X
	// and Y are a delta from the anchor point.
	Box         geom.Box
	AnchorTo    string
	AnchorPoint AnchorPoint
	Editable    bool
	// Fallbacks are asset references chosen from when a slot leaves an image
	// or graphic element empty.
	Fallbacks []string

	Text    *TextSpec
	Image   *ImageSpec
	Graphic *GraphicSpec
}

// TextSpec holds the text variant fields.
type TextSpec struct {
	FontFamily  string
	FontSizePt  float64
	Align       TextAlign
	Multiline   bool
	LineSpacing float64
}

// ImageSpec holds the image variant fields.
type ImageSpec struct {
	Fit  Fit
	Clip *ClipShape
	// FrameSource is a built-in frame name or an asset reference drawn over the photo.
	FrameSource   string
	BorderWidthMM float64
}

// ClipShape clips an image to a rounded rectangle.
type ClipShape struct {
	Kind     string
	RadiusMM float64
}

// GraphicSpec holds the graphic variant fields.
type GraphicSpec struct {
	Source string
}

// Text builds an editable text element with default typography.
func Text(id string, box geom.Box, sizePt float64) Element {
	return Element{
		Kind: KindText, ID: id, Box: box, AnchorPoint: AnchorTop, Editable: true,
		Text: &TextSpec{
			FontFamily:  DefaultFontFamily,
			FontSizePt:  sizePt,
			Align:       AlignCenter,
			LineSpacing: DefaultLineSpacing,
		},
	}
}

// Image builds an editable image element that covers its box.
func Image(id string, box geom.Box) Element {
	return Element{
		Kind: KindImage, ID: id, Box: box, AnchorPoint: AnchorTop, Editable: true,
		Image: &ImageSpec{Fit: FitCover},
	}
}

// Graphic builds a graphic element with the given source.
func Graphic(id string, box geom.Box, source string) Element {
	return Element{
		Kind: KindGraphic, ID: id, Box: box, AnchorPoint: AnchorTop, Editable: true,
		Graphic: &GraphicSpec{Source: source},
	}
}

// IsAnchored reports whether the element is positioned relative to another.
func (e *Element) IsAnchored() bool { return e.AnchorTo != "" }

// AcceptsAsset reports whether slot content for the element is an asset reference.
func (e *Element) AcceptsAsset() bool { return e.Kind == KindImage || e.Kind == KindGraphic }

type elementJSON struct {
	Type          Kind           `json:"type"`
	ID            string         `json:"id"`
	X             float64        `json:"x_mm"`
	Y             float64        `json:"y_mm"`
	W             float64        `json:"w_mm"`
	H             float64        `json:"h_mm"`
	AnchorTo      string         `json:"anchor_to,omitempty"`
	AnchorPoint   AnchorPoint    `json:"anchor_point,omitempty"`
	Editable      bool           `json:"editable"`
	Fallbacks     []string       `json:"fallbacks,omitempty"`
	FontFamily    string         `json:"font_family,omitempty"`
	FontSizePt    float64        `json:"font_size_pt,omitempty"`
	TextAlign     TextAlign      `json:"text_align,omitempty"`
	Multiline     *bool          `json:"multiline,omitempty"`
	LineSpacing   float64        `json:"line_spacing,omitempty"`
	Fit           Fit            `json:"fit,omitempty"`
	ClipShape     *clipShapeJSON `json:"clip_shape,omitempty"`
	FrameSource   string         `json:"frame_source,omitempty"`
	BorderWidthMM float64        `json:"border_width_mm,omitempty"`
	Source        *string        `json:"source,omitempty"`
}

type clipShapeJSON struct {
	Kind     string  `json:"kind"`
	RadiusMM float64 `json:"radius_mm"`
}

// MarshalJSON writes the element in the flat document shape accepted by Parse.
func (e Element) MarshalJSON() ([]byte, error) {
	doc := elementJSON{
		Type: e.Kind, ID: e.ID,
		X: e.Box.X, Y: e.Box.Y, W: e.Box.W, H: e.Box.H,
		AnchorTo: e.AnchorTo, AnchorPoint: e.AnchorPoint,
		Editable:  e.Editable,
		Fallbacks: slices.Clone(e.Fallbacks),
	}
	switch {
	case e.Text != nil:
		ml := e.Text.Multiline
		doc.FontFamily = e.Text.FontFamily
		doc.FontSizePt = e.Text.FontSizePt
		doc.TextAlign = e.Text.Align
		doc.Multiline = &ml
		doc.LineSpacing = e.Text.LineSpacing
	case e.Image != nil:
		doc.Fit = e.Image.Fit
		doc.FrameSource = e.Image.FrameSource
		doc.BorderWidthMM = e.Image.BorderWidthMM
		if c := e.Image.Clip; c != nil {
			doc.ClipShape = &clipShapeJSON{Kind: c.Kind, RadiusMM: c.RadiusMM}
		}
	case e.Graphic != nil:
		src := e.Graphic.Source
		doc.Source = &src
	}
	return json.Marshal(doc)
}

// Anchor returns the anchor point, defaulting to top.
func (e *Element) Anchor() AnchorPoint {
	if e.AnchorPoint == "" {
		return AnchorTop
	}
	return e.AnchorPoint
}

// Family returns the font family, defaulting to DefaultFontFamily.
func (s *TextSpec) Family() string {
	if s.FontFamily == "" {
		return DefaultFontFamily
	}
	return s.FontFamily
}

// Alignment returns the text alignment, defaulting to center.
func (s *TextSpec) Alignment() TextAlign {
	if s.Align == "" {
		return AlignCenter
	}
	return s.Align
}

// Spacing returns the line spacing multiplier, defaulting to DefaultLineSpacing.
func (s *TextSpec) Spacing() float64 {
	if s.LineSpacing <= 0 {
		return DefaultLineSpacing
	}
	return s.LineSpacing
}

// FitMode returns the fit mode, defaulting to cover.
func (s *ImageSpec) FitMode() Fit {
	if s.Fit == "" {
		return FitCover
	}
	return s.Fit
}
