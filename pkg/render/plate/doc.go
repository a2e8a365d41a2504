// Package plate renders one bed of a template into a self-contained SVG
// drawing in millimetre units.
//
// [RenderBed] validates the template and the bed's content first and returns
// an error before producing any output if either is invalid. A successful
// render is byte-for-byte deterministic for identical inputs.
//
// # Structure
//
// Each occupied slot becomes a tile group translated to the slot's origin:
//
//	<g id="tile-r1-c2" transform="translate(300,105)">
//	  ...images, then text, then graphics...
//	</g>
//
// Element identifiers follow "{type}-r{row}-c{col}-{elementId}" and clip
// paths "clip-r{row}-c{col}-{elementId}". Downstream editors rely on these
// shapes. Empty slots emit nothing.
//
// # Content gaps
//
// A slot without a value for a declared element does not fail the render:
// text renders empty, images render a neutral placeholder box and graphics an
// outline. Each gap is reported as a warning on the [Drawing].
//
// # Assets
//
// Image and graphic references are resolved against a read-only [Assets]
// snapshot supplied by the caller. Resolved raster data is embedded as a data
// URI and SVG data is inlined. The renderer never reads files or the network;
// unresolved references are linked as-is.
package plate
