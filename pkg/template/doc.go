// Package template defines the layout model: a print bed, the part repeated
// across it, the tiling grid and the positioned elements inside each part.
//
// Templates are parsed from JSON, YAML or TOML documents with [Parse] or
// [ParseFile], or built in Go and checked with [Template.Validate]. A parsed
// template is immutable; the allocator and renderer only read it.
//
// # Elements
//
// An [Element] is a tagged variant. Kind selects which of Text, Image or
// Graphic carries the variant fields; the other two are nil. Elements may be
// positioned relative to another element with AnchorTo and AnchorPoint. The
// anchors must form a DAG, which [Part.AnchorGraph] builds and checks.
//
// # Z-order
//
// Rendering order is fixed by kind, not authoring order: images, then text,
// then graphics, stable within each kind. [Part.ZOrder] returns that order.
package template
