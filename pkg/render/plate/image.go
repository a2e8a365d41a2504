package plate

import (
	"fmt"
	"strings"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

const placeholderFill = "#f0f0f0"

var aspectRatios = map[template.Fit]string{
	template.FitCover:   "xMidYMid slice",
	template.FitContain: "xMidYMid meet",
}

func (r *renderer) image(t tileRef, e *template.Element, box geom.Box, v content.Value, ok bool) {
	spec := e.Image
	fmt.Fprintf(&r.buf, `    <g id="%s">`+"\n", t.id("image-group", e.ID))

	var clipID string
	radius := 0.0
	if spec.Clip != nil {
		clipID = t.id("clip", e.ID)
		radius = geom.ClampRadius(spec.Clip.RadiusMM, box.W, box.H)
		rad := geom.Num(radius)
		fmt.Fprintf(&r.buf, `      <defs><clipPath id="%s"><rect %s rx="%s" ry="%s"/></clipPath></defs>`+"\n",
			clipID, boxAttrs(box), rad, rad)
	}
	clipAttr := ""
	if clipID != "" {
		clipAttr = fmt.Sprintf(` clip-path="url(#%s)"`, clipID)
	}

	var href string
	if ok {
		href, ok = r.imageHref(t, e.ID, v.Ref())
	} else {
		r.warn(errors.ErrCodeContentGap, t.slot, e.ID, "no image for element")
	}

	if !ok {
		fmt.Fprintf(&r.buf, `      <rect id="%s" %s fill="%s" data-placeholder="true"%s%s/>`+"\n",
			t.id("image", e.ID), boxAttrs(box), placeholderFill, clipAttr, editableAttr(e))
	} else {
		attrs := fmt.Sprintf(`id="%s" %s href="%s" preserveAspectRatio="%s"%s`,
			t.id("image", e.ID), boxAttrs(box), geom.EscapeXML(href), aspectRatios[spec.FitMode()], editableAttr(e))

		if p := v.Photo; p != nil && p.HasTransform() {
			// The clip stays on a wrapping group so it does not move with the photo.
			if clipAttr != "" {
				fmt.Fprintf(&r.buf, `      <g%s>`+"\n", clipAttr)
			}
			fmt.Fprintf(&r.buf, `      <image %s transform="%s"/>`+"\n", attrs, photoTransform(box, p))
			if clipAttr != "" {
				r.buf.WriteString("      </g>\n")
			}
		} else {
			fmt.Fprintf(&r.buf, `      <image %s%s/>`+"\n", attrs, clipAttr)
		}
	}

	if spec.FrameSource != "" {
		r.frame(t, e, box, radius)
	}
	r.buf.WriteString("    </g>\n")
}

// photoTransform offsets the photo and scales it about the box centre.
func photoTransform(box geom.Box, p *content.Photo) string {
	var parts []string
	if p.OffsetXMM != 0 || p.OffsetYMM != 0 {
		parts = append(parts, fmt.Sprintf("translate(%s,%s)", geom.Num(p.OffsetXMM), geom.Num(p.OffsetYMM)))
	}
	if p.Scale != 1 {
		c := box.Center()
		parts = append(parts, fmt.Sprintf("translate(%s,%s) scale(%s) translate(%s,%s)",
			geom.Num(c.X), geom.Num(c.Y), geom.Num(p.Scale), geom.Num(-c.X), geom.Num(-c.Y)))
	}
	return strings.Join(parts, " ")
}

// imageHref resolves a reference against the asset snapshot. Without a
// snapshot references are linked verbatim; a reference missing from the
// snapshot is reported and yields false.
func (r *renderer) imageHref(t tileRef, elem, ref string) (string, bool) {
	if strings.HasPrefix(ref, "data:") || r.cfg.assets == nil {
		return ref, true
	}
	if a, ok := r.cfg.assets.Lookup(ref); ok {
		if a.MediaType == "" {
			a.MediaType = MediaTypeOf(ref)
		}
		return a.DataURI(), true
	}
	r.warn(errors.ErrCodeAssetMissing, t.slot, elem, "asset %q not in snapshot", ref)
	return "", false
}

type frameStyle struct {
	stroke string
	width  float64
	ornate bool
}

var frameStyles = map[string]frameStyle{
	"simple-gold":   {stroke: "#FFD700", width: 1.5},
	"simple-silver": {stroke: "#C0C0C0", width: 1.5},
	"simple-black":  {stroke: "#000000", width: 1},
	"ornate-gold":   {stroke: "#FFD700", width: 2, ornate: true},
}

// IsBuiltinFrame reports whether name is one of the built-in frame styles.
func IsBuiltinFrame(name string) bool {
	_, ok := frameStyles[name]
	return ok
}

// ornateInset is the distance of the inner border of an ornate frame.
const ornateInset = 2.0

func (r *renderer) frame(t tileRef, e *template.Element, box geom.Box, radius float64) {
	id := t.id("frame", e.ID)
	src := e.Image.FrameSource

	if style, ok := frameStyles[src]; ok {
		width := style.width
		if e.Image.BorderWidthMM > 0 {
			width = e.Image.BorderWidthMM
		}
		rad := geom.Num(radius)
		local := geom.Box{W: box.W, H: box.H}
		fmt.Fprintf(&r.buf, `      <g transform="translate(%s,%s)">`, geom.Num(box.X), geom.Num(box.Y))
		if style.ornate {
			inner := geom.Box{X: ornateInset, Y: ornateInset, W: box.W - 2*ornateInset, H: box.H - 2*ornateInset}
			innerRad := geom.Num(max(0, radius-ornateInset))
			fmt.Fprintf(&r.buf, `<g id="%s"><rect %s rx="%s" ry="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
				id, boxAttrs(local), rad, rad, style.stroke, geom.Num(width))
			fmt.Fprintf(&r.buf, `<rect %s rx="%s" ry="%s" fill="none" stroke="%s" stroke-width="0.5" opacity="0.6"/></g>`,
				boxAttrs(inner), innerRad, innerRad, style.stroke)
		} else {
			fmt.Fprintf(&r.buf, `<rect id="%s" %s rx="%s" ry="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
				id, boxAttrs(local), rad, rad, style.stroke, geom.Num(width))
		}
		r.buf.WriteString("</g>\n")
		return
	}

	if r.cfg.assets != nil {
		if a, ok := r.cfg.assets.Lookup(src); ok && a.IsSVG() {
			viewBox, inner := splitSVG(string(a.Data))
			if viewBox == "" {
				viewBox = defaultViewBox
			}
			fmt.Fprintf(&r.buf, `      <svg id="%s" %s viewBox="%s" preserveAspectRatio="none">%s</svg>`+"\n",
				id, boxAttrs(box), geom.EscapeXML(viewBox), scopeIDs(inner, id))
			return
		}
	}

	r.warn(errors.ErrCodeAssetMissing, t.slot, e.ID, "frame %q is neither built in nor an SVG asset", src)
	fmt.Fprintf(&r.buf, `      <rect id="%s" %s rx="%s" ry="%s" fill="none" stroke="#FFD700" stroke-width="1"/>`+"\n",
		id, boxAttrs(box), geom.Num(radius), geom.Num(radius))
}
