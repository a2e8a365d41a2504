// Package pkg provides the core libraries for bedforge print bed layout.
//
// # Overview
//
// Bedforge places personalised parts (memorial stakes, photo plaques, tags)
// onto the flat bed of a laser or UV printer. A template describes the bed,
// the part and how parts tile; content supplies per-part text, photos and
// graphics. The pkg directory is organized into these areas:
//
//  1. [template] and [content] - Documents, parsing and validation
//  2. [anchor] and [alloc] - Geometry resolution and bed allocation
//  3. [render] - SVG drawing of a bed and PDF/PNG export
//  4. [pipeline] - Orchestration (allocate → render → export → manifest)
//  5. [ingest] and [store] - Order imports and the template registry
//
// # Architecture
//
// The typical data flow through bedforge:
//
//	Order export (CSV, JSON) or content document
//	         ↓
//	    [ingest] package (rows → items, SKU → template)
//	         ↓
//	    [alloc] package (items → beds and slots)
//	         ↓
//	    [render/plate] package (one SVG per bed, text kept live)
//	         ↓
//	    SVG/PDF/PNG plus a placement manifest CSV
//
// # Quick Start
//
// Render fixed content onto one bed:
//
//	tpl, _ := template.ParseFile("stake.json")
//	set, _ := content.ParseFile("bed.json")
//	d, err := plate.RenderBed(tpl, set)
//	os.WriteFile("bed.svg", d.SVG, 0o644)
//
// Allocate any number of items and render every bed:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.Job{Template: tpl, Items: items})
//
// # Main Packages
//
// [template] - Bed, part and tiling geometry with text, image and graphic
// elements. Elements may be anchored to one another.
//
// [anchor] - Resolves anchored elements into absolute part-space boxes in
// dependency order, rejecting cycles.
//
// [alloc] - Assigns items to beds and slots. Sequential fills the tiling in
// order; shelf packs parts around machine keep-out zones.
//
// [render/plate] - Draws a bed: tiles, clipped photos, frames, wrapped text
// and origin markers, with warnings for content gaps and overflow.
//
// [cache] - File, Redis or null cache for drawings and exports.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [template]: github.com/matzehuels/bedforge/pkg/template
// [content]: github.com/matzehuels/bedforge/pkg/content
// [anchor]: github.com/matzehuels/bedforge/pkg/anchor
// [alloc]: github.com/matzehuels/bedforge/pkg/alloc
// [render]: github.com/matzehuels/bedforge/pkg/render
// [render/plate]: github.com/matzehuels/bedforge/pkg/render/plate
// [pipeline]: github.com/matzehuels/bedforge/pkg/pipeline
// [ingest]: github.com/matzehuels/bedforge/pkg/ingest
// [store]: github.com/matzehuels/bedforge/pkg/store
// [cache]: github.com/matzehuels/bedforge/pkg/cache
// [observability]: github.com/matzehuels/bedforge/pkg/observability
package pkg
