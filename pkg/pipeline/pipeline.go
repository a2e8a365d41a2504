// Package pipeline runs bedforge jobs: allocate items to beds, render every
// bed, export the requested formats and write the placement manifest.
//
// The CLI and the HTTP adapter both go through a [Runner] so caching,
// logging and observability behave the same everywhere.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.Job{
//	    Template: tpl,
//	    Items:    items,
//	    Options:  pipeline.Options{Formats: []string{"svg", "pdf"}},
//	})
//	for _, bed := range res.Beds {
//	    os.WriteFile(fmt.Sprintf("bed-%d.svg", bed.Index), bed.Artifacts["svg"], 0o644)
//	}
//
// Allocation and seeded default choices happen once, sequentially, so the
// plan depends only on the inputs and the seed. Beds then render in
// parallel; results are always returned in bed order.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bedforge/pkg/alloc"
	"github.com/matzehuels/bedforge/pkg/cache"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/render"
	"github.com/matzehuels/bedforge/pkg/render/plate"
	"github.com/matzehuels/bedforge/pkg/template"
)

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultConcurrency is the number of beds rendered at once.
	DefaultConcurrency = 4

	// DefaultPNGScale is the rsvg-convert zoom used for PNG export.
	DefaultPNGScale = 2.0

	// DefaultStrategy is the default allocation strategy.
	DefaultStrategy = alloc.StrategySequential
)

// ValidStrategies is the set of supported allocation strategies.
var ValidStrategies = map[string]bool{
	alloc.StrategySequential: true,
	alloc.StrategyShelf:      true,
}

// Options contains the per-job configuration.
// This struct supports JSON serialization for API requests.
type Options struct {
	Seed        uint64   `json:"seed,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	PNGScale    float64  `json:"png_scale,omitempty"`
	Concurrency int      `json:"concurrency,omitempty"`

	// Strategy selects the allocator: "sequential" fills the tiling grid,
	// "shelf" nests parts around keep-outs.
	Strategy string     `json:"strategy,omitempty"`
	GutterMM float64    `json:"gutter_mm,omitempty"`
	Keepouts []geom.Box `json:"keepouts,omitempty"`

	// FillDefaults picks seeded fallbacks for empty asset elements.
	FillDefaults bool `json:"fill_defaults,omitempty"`
	// NoMetadata omits descriptive comments from drawings.
	NoMetadata bool `json:"no_metadata,omitempty"`
	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger  `json:"-"`
	Assets plate.Assets `json:"-"`

	formats   []render.Format
	validated bool
}

// ValidateAndSetDefaults checks options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatSVG)}
	}
	o.formats = o.formats[:0]
	for _, f := range o.Formats {
		parsed, err := render.ParseFormats(f)
		if err != nil {
			return err
		}
		o.formats = append(o.formats, parsed...)
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if !ValidStrategies[o.Strategy] {
		return fmt.Errorf("invalid strategy: %q (must be one of: sequential, shelf)", o.Strategy)
	}
	if o.GutterMM < 0 {
		return fmt.Errorf("gutter_mm must be >= 0, got %v", o.GutterMM)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// drawingKeyOpts returns cache key options for a bed drawing.
func (o *Options) drawingKeyOpts(templateHash string, bed int) cache.DrawingKeyOpts {
	return cache.DrawingKeyOpts{
		TemplateHash: templateHash,
		Seed:         o.Seed,
		BedIndex:     bed,
		Metadata:     !o.NoMetadata,
	}
}

// artifactKeyOpts returns cache key options for an exported file.
func (o *Options) artifactKeyOpts(f render.Format) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: string(f)}
	if f == render.FormatPNG {
		opts.Scale = o.PNGScale
	}
	return opts
}

// Job is one unit of work: items laid out with a single template.
type Job struct {
	// ID identifies the job in logs and the manifest. Generated when empty.
	ID       string
	Template *template.Template
	Items    []content.Item
	Options  Options
}

// Result contains the outputs of a job.
type Result struct {
	JobID      string      `json:"job_id"`
	TemplateID string      `json:"template_id,omitempty"`
	Plan       *alloc.Plan `json:"plan"`
	Beds       []BedResult `json:"beds"`
	// Manifest is the placement CSV for the whole job.
	Manifest  []byte    `json:"-"`
	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Warnings returns the warnings of every bed, in bed order.
func (r *Result) Warnings() []errors.Warning {
	var out []errors.Warning
	for _, b := range r.Beds {
		out = append(out, b.Warnings...)
	}
	return out
}

// BedResult is the rendered output for one bed.
type BedResult struct {
	Index     int               `json:"index"`
	Capacity  int               `json:"capacity"`
	Filled    int               `json:"filled"`
	Artifacts map[string][]byte `json:"-"`
	Warnings  []errors.Warning  `json:"warnings,omitempty"`
	CacheHit  bool              `json:"cache_hit"`
}

// Stats contains job execution statistics.
type Stats struct {
	Items        int           `json:"items"`
	Beds         int           `json:"beds"`
	EmptySlots   int           `json:"empty_slots"`
	AllocateTime time.Duration `json:"allocate_ns"`
	RenderTime   time.Duration `json:"render_ns"`
}

// CacheInfo counts drawing cache lookups.
type CacheInfo struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}
