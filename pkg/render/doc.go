// Package render turns bed drawings into deliverable files.
//
// The [plate] subpackage renders a bed into SVG. This package converts that
// SVG verbatim into print formats using the external rsvg-convert tool (from
// librsvg):
//
//	d, err := plate.RenderBed(tpl, set)
//	pdf, err := render.ToPDF(ctx, d.SVG)
//	png, err := render.ToPNG(ctx, d.SVG, 2.0) // 2x scale
//
// Drawings are sized in millimetres, so PDF pages come out at the bed's
// physical size.
//
// [plate]: github.com/matzehuels/bedforge/pkg/render/plate
package render
