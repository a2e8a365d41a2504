// Package geom provides the unit conversions and small helpers shared by the
// template model, the allocator and the plate renderer.
//
// All layout coordinates are millimetres. Font sizes are points and are only
// converted to millimetres when a baseline or line height is computed; glyph
// sizes are emitted in points unchanged.
//
// # Determinism
//
// Every number that ends up in a drawing goes through [Num], which rounds to
// 1e-4 mm and prints the shortest decimal form. Two renders of the same input
// therefore produce byte-identical markup regardless of how intermediate sums
// were accumulated.
package geom
