// Package anchor resolves relative element positions into absolute boxes in
// part space.
//
// An element without an anchor keeps its literal box. An anchored element is
// placed at a point of its target's resolved box, selected by the anchor
// point, offset by the element's own x/y:
//
//	top    (ref.x,           ref.y)
//	bottom (ref.x,           ref.y + ref.h)
//	left   (ref.x,           ref.y)
//	right  (ref.x + ref.w,   ref.y)
//	center (ref.x + ref.w/2, ref.y + ref.h/2)
//
// Elements are resolved in topological order of the anchor graph, so every
// target is final before anything anchored to it is placed.
package anchor

import (
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Resolve computes the absolute box of every element in the part. Anchor
// cycles and unknown targets are returned as graph validation errors.
func Resolve(part *template.Part) (map[string]geom.Box, error) {
	g, err := part.AnchorGraph()
	if err != nil {
		return nil, err
	}
	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	boxes := make(map[string]geom.Box, len(order))
	for _, id := range order {
		e, _ := part.Element(id)
		if !e.IsAnchored() {
			boxes[id] = e.Box
			continue
		}
		p := Point(boxes[e.AnchorTo], e.Anchor())
		boxes[id] = geom.Box{X: p.X + e.Box.X, Y: p.Y + e.Box.Y, W: e.Box.W, H: e.Box.H}
	}
	return boxes, nil
}

// Point returns the point of ref selected by an anchor point.
func Point(ref geom.Box, ap template.AnchorPoint) geom.Point {
	switch ap {
	case template.AnchorBottom:
		return geom.Point{X: ref.X, Y: ref.Bottom()}
	case template.AnchorRight:
		return geom.Point{X: ref.Right(), Y: ref.Y}
	case template.AnchorCenter:
		return ref.Center()
	default: // top, left
		return ref.Origin()
	}
}
