package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/bedforge/pkg/alloc"
	"github.com/matzehuels/bedforge/pkg/cache"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/observability"
	"github.com/matzehuels/bedforge/pkg/render"
	"github.com/matzehuels/bedforge/pkg/render/plate"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Digester is implemented by asset snapshots that can fingerprint their
// contents. Jobs whose assets cannot be fingerprinted bypass the drawing cache.
type Digester interface {
	Digest() string
}

// bedInput is everything besides the template that determines a drawing.
type bedInput struct {
	Content *content.Set       `json:"content"`
	Tiles   map[int]plate.Tile `json:"tiles,omitempty"`
	Assets  string             `json:"assets,omitempty"`
}

// Tiles returns explicit tile positions for placements whose strategy chose
// the origin itself. Grid placements are left to the tiling formula.
func Tiles(bed *alloc.BedAssignment) map[int]plate.Tile {
	var tiles map[int]plate.Tile
	for _, p := range bed.Placements {
		if p.Origin == nil {
			continue
		}
		if tiles == nil {
			tiles = make(map[int]plate.Tile)
		}
		tiles[p.Slot] = plate.Tile{Row: p.Row, Col: p.Col, Origin: *p.Origin}
	}
	return tiles
}

// RenderOptions returns the plate options for one bed of a job.
func RenderOptions(bed *alloc.BedAssignment, opts *Options) []plate.Option {
	ro := []plate.Option{plate.WithBedIndex(bed.Index)}
	if opts.Assets != nil {
		ro = append(ro, plate.WithAssets(opts.Assets))
	}
	if tiles := Tiles(bed); tiles != nil {
		ro = append(ro, plate.WithTiles(tiles))
	}
	if opts.NoMetadata {
		ro = append(ro, plate.WithoutMetadata())
	}
	return ro
}

func (r *Runner) renderBed(ctx context.Context, tpl *template.Template, tplHash string, bed *alloc.BedAssignment, opts *Options) (*BedResult, error) {
	hooks := observability.Pipeline()
	hooks.OnBedRenderStart(ctx, bed.Index)
	start := time.Now()

	res, err := r.renderBedCached(ctx, tpl, tplHash, bed, opts)

	warnings := 0
	if res != nil {
		warnings = len(res.Warnings)
	}
	hooks.OnBedRenderComplete(ctx, bed.Index, warnings, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("rendered bed",
		"bed", bed.Index,
		"filled", res.Filled,
		"capacity", res.Capacity,
		"cached", res.CacheHit,
		"duration", time.Since(start))
	return res, nil
}

func (r *Runner) renderBedCached(ctx context.Context, tpl *template.Template, tplHash string, bed *alloc.BedAssignment, opts *Options) (*BedResult, error) {
	set := bed.ContentSet()
	res := &BedResult{
		Index:     bed.Index,
		Capacity:  bed.Capacity,
		Filled:    bed.Filled(),
		Artifacts: make(map[string][]byte, len(opts.formats)),
	}

	in := bedInput{Content: set, Tiles: Tiles(bed)}
	cacheable := true
	if opts.Assets != nil {
		if d, ok := opts.Assets.(Digester); ok {
			in.Assets = d.Digest()
		} else {
			cacheable = false
		}
	}

	var (
		drawing *plate.Drawing
		key     string
	)
	if cacheable {
		contentHash, err := cache.HashJSON(in)
		if err != nil {
			return nil, fmt.Errorf("hash content: %w", err)
		}
		key = r.Keyer.DrawingKey(contentHash, opts.drawingKeyOpts(tplHash, bed.Index))
		if !opts.Refresh {
			drawing = r.cachedDrawing(ctx, key)
		}
	}

	if drawing != nil {
		res.CacheHit = true
	} else {
		d, err := plate.RenderBed(tpl, set, RenderOptions(bed, opts)...)
		if err != nil {
			return nil, err
		}
		drawing = d
		if cacheable {
			if data, err := json.Marshal(d); err == nil {
				if err := r.Cache.Set(ctx, key, data, cache.DrawingTTL); err == nil {
					observability.Cache().OnCacheSet(ctx, "drawing", len(data))
				}
			}
		}
	}
	res.Warnings = drawing.Warnings

	svgHash := cache.Hash(drawing.SVG)
	for _, f := range opts.formats {
		data, err := r.export(ctx, drawing.SVG, svgHash, f, opts)
		if err != nil {
			return nil, err
		}
		res.Artifacts[string(f)] = data
	}
	return res, nil
}

func (r *Runner) cachedDrawing(ctx context.Context, key string) *plate.Drawing {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "drawing")
		return nil
	}
	var d plate.Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		observability.Cache().OnCacheMiss(ctx, "drawing")
		return nil
	}
	observability.Cache().OnCacheHit(ctx, "drawing")
	return &d
}

// export converts a drawing into format f, consulting the artifact cache for
// formats that need the external converter.
func (r *Runner) export(ctx context.Context, svg []byte, svgHash string, f render.Format, opts *Options) ([]byte, error) {
	if f == render.FormatSVG {
		return svg, nil
	}

	key := r.Keyer.ArtifactKey(svgHash, opts.artifactKeyOpts(f))
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	data, err := render.Convert(ctx, svg, f, opts.PNGScale)
	observability.Pipeline().OnExportComplete(ctx, string(f), len(data), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", f, err)
	}
	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, nil
}
