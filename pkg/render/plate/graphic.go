package plate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

const defaultViewBox = "0 0 100 100"

var (
	viewBoxRe = regexp.MustCompile(`viewBox\s*=\s*["']([^"']+)["']`)
	idAttrRe  = regexp.MustCompile(`(\sid\s*=\s*)(["'])([^"']+)(["'])`)
	idRefRe   = regexp.MustCompile(`(url\(\s*#|href\s*=\s*["']#)([^"')\s]+)`)
)

// splitSVG returns the viewBox of the outermost svg element and its inner markup.
// Markup without an svg element is returned unchanged as the inner part.
func splitSVG(markup string) (viewBox, inner string) {
	start := strings.Index(markup, "<svg")
	if start < 0 {
		return "", strings.TrimSpace(markup)
	}
	open := strings.Index(markup[start:], ">")
	if open < 0 {
		return "", ""
	}
	tag := markup[start : start+open+1]
	if m := viewBoxRe.FindStringSubmatch(tag); m != nil {
		viewBox = m[1]
	}
	if strings.HasSuffix(tag, "/>") {
		return viewBox, ""
	}
	body := markup[start+open+1:]
	if end := strings.LastIndex(body, "</svg>"); end >= 0 {
		body = body[:end]
	}
	return viewBox, strings.TrimSpace(body)
}

// scopeIDs prefixes every id declared in markup, and every local reference
// to one, so that repeating the markup per tile keeps ids unique.
func scopeIDs(markup, prefix string) string {
	declared := map[string]bool{}
	for _, m := range idAttrRe.FindAllStringSubmatch(markup, -1) {
		declared[m[3]] = true
	}
	if len(declared) == 0 {
		return markup
	}
	markup = idAttrRe.ReplaceAllString(markup, "${1}${2}"+prefix+"-${3}${4}")
	return idRefRe.ReplaceAllStringFunc(markup, func(ref string) string {
		m := idRefRe.FindStringSubmatch(ref)
		if !declared[m[2]] {
			return ref
		}
		return m[1] + prefix + "-" + m[2]
	})
}

func isInlineSVG(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "<svg") || strings.HasPrefix(s, "<?xml")
}

func (r *renderer) graphic(t tileRef, e *template.Element, box geom.Box, v content.Value, ok bool) {
	id := t.id("graphic", e.ID)
	src := e.Graphic.Source
	if ok {
		src = v.Ref()
	}

	switch {
	case src == "":
		r.warn(errors.ErrCodeContentGap, t.slot, e.ID, "no graphic source")
		r.graphicPlaceholder(id, e, box)
	case isInlineSVG(src):
		r.nestedSVG(id, e, box, src)
	default:
		var asset Asset
		found := false
		if r.cfg.assets != nil {
			asset, found = r.cfg.assets.Lookup(src)
		}
		switch {
		case found && asset.IsSVG():
			r.nestedSVG(id, e, box, string(asset.Data))
		case found:
			if asset.MediaType == "" {
				asset.MediaType = MediaTypeOf(src)
			}
			r.rasterGraphic(id, e, box, asset.DataURI())
		case isRaster(src) && r.cfg.assets == nil:
			r.rasterGraphic(id, e, box, src)
		default:
			r.warn(errors.ErrCodeAssetMissing, t.slot, e.ID, "graphic %q could not be resolved", src)
			r.graphicPlaceholder(id, e, box)
		}
	}
}

// nestedSVG embeds markup scaled to exactly fill the box.
func (r *renderer) nestedSVG(id string, e *template.Element, box geom.Box, markup string) {
	viewBox, inner := splitSVG(markup)
	if viewBox == "" {
		viewBox = defaultViewBox
	}
	fmt.Fprintf(&r.buf, `    <svg id="%s" %s viewBox="%s" preserveAspectRatio="none"%s>%s</svg>`+"\n",
		id, boxAttrs(box), geom.EscapeXML(viewBox), editableAttr(e), scopeIDs(inner, id))
}

func (r *renderer) rasterGraphic(id string, e *template.Element, box geom.Box, href string) {
	fmt.Fprintf(&r.buf, `    <image id="%s" %s href="%s" preserveAspectRatio="xMidYMid meet"%s/>`+"\n",
		id, boxAttrs(box), geom.EscapeXML(href), editableAttr(e))
}

func (r *renderer) graphicPlaceholder(id string, e *template.Element, box geom.Box) {
	fmt.Fprintf(&r.buf, `    <rect id="%s" %s fill="none" stroke="#000000" stroke-width="0.5" data-placeholder="true"%s/>`+"\n",
		id, boxAttrs(box), editableAttr(e))
}
