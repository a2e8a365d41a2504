// Package alloc distributes content items over beds.
//
// The default [Sequential] strategy fills the template's tiling grid in
// row-major order: with capacity C, bed k receives items [k*C, (k+1)*C) and
// item j of a bed lands in slot j at row j/cols, column j%cols. Input order is
// authoritative; slot indices supplied on items are ignored.
//
// [Shelf] packs parts first-fit into shelves across the bed, stepping around
// machine keep-out zones. Its placements carry explicit origins because they
// no longer follow the tiling formula.
//
// Allocation never uses randomness. The plan's seed is consumed only by
// [FillDefaults], which threads one [Chooser] over beds, slots and elements in
// render order to pick fallback assets for empty image and graphic elements.
package alloc
