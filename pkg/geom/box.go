package geom

import "math"

// Point is a position in millimetres.
type Point struct {
	X float64 `json:"x_mm"`
	Y float64 `json:"y_mm"`
}

// Box is an axis-aligned rectangle in millimetres. X and Y are the top-left corner.
type Box struct {
	X float64 `json:"x_mm"`
	Y float64 `json:"y_mm"`
	W float64 `json:"w_mm"`
	H float64 `json:"h_mm"`
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Center returns the centre point.
func (b Box) Center() Point { return Point{X: b.X + b.W/2, Y: b.Y + b.H/2} }

// Origin returns the top-left corner.
func (b Box) Origin() Point { return Point{X: b.X, Y: b.Y} }

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Overlaps reports whether b and o share any interior area.
// Boxes that only touch along an edge do not overlap.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.Right() && o.X < b.Right() && b.Y < o.Bottom() && o.Y < b.Bottom()
}

// Within reports whether b lies entirely inside o.
func (b Box) Within(o Box) bool {
	const eps = 1e-9
	return b.X >= o.X-eps && b.Y >= o.Y-eps && b.Right() <= o.Right()+eps && b.Bottom() <= o.Bottom()+eps
}

// ClampRadius limits a corner radius to half the shorter side of a w×h
// rectangle so the rounded outline never self-intersects. Negative radii
// clamp to zero.
func ClampRadius(r, w, h float64) float64 {
	limit := math.Min(w, h) / 2
	if r > limit {
		r = limit
	}
	if r < 0 {
		r = 0
	}
	return r
}
