package plate

import (
	"fmt"
	"strings"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/fonts"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

var textAnchors = map[template.TextAlign]string{
	template.AlignLeft:   "start",
	template.AlignCenter: "middle",
	template.AlignRight:  "end",
}

func (r *renderer) text(t tileRef, e *template.Element, box geom.Box, v content.Value, ok bool) {
	s := e.Text
	if !ok {
		r.warn(errors.ErrCodeContentGap, t.slot, e.ID, "no text for element")
	}

	lines := geom.SplitLines(v.Text)
	if !s.Multiline {
		lines = []string{strings.Join(lines, " ")}
	}

	align := s.Alignment()
	var x float64
	switch align {
	case template.AlignLeft:
		x = box.X
	case template.AlignRight:
		x = box.Right()
	default:
		x = box.X + box.W/2
	}

	first := box.Y + geom.PtToMM(s.FontSizePt)
	lh := geom.LineHeight(s.FontSizePt, s.Spacing())
	if ok {
		last := first + float64(len(lines)-1)*lh
		if !fonts.Fits(lines, s.FontSizePt, box.W) || last > box.Bottom() {
			r.warn(errors.ErrCodeTextOverflow, t.slot, e.ID, "text likely exceeds its %sx%smm box", geom.Num(box.W), geom.Num(box.H))
		}
	}

	fmt.Fprintf(&r.buf, `    <text id="%s" x="%s" y="%s" font-family="%s" font-size="%spt" text-anchor="%s" fill="black"%s>`,
		t.id("text", e.ID), geom.Num(x), geom.Num(first), geom.EscapeXML(s.Family()), geom.Num(s.FontSizePt),
		textAnchors[align], editableAttr(e))

	if s.Multiline {
		for i, y := range geom.Baselines(len(lines), first, lh) {
			fmt.Fprintf(&r.buf, `<tspan x="%s" y="%s">%s</tspan>`, geom.Num(x), geom.Num(y), geom.EscapeXML(lines[i]))
		}
	} else {
		r.buf.WriteString(geom.EscapeXML(lines[0]))
	}
	r.buf.WriteString("</text>\n")
}
