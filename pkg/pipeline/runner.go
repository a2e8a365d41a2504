package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bedforge/pkg/alloc"
	"github.com/matzehuels/bedforge/pkg/cache"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/observability"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Runner encapsulates job execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different jobs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Generate runs the complete allocate → render → export job.
// Either every bed renders or an error is returned; there is no partial result.
func (r *Runner) Generate(ctx context.Context, job Job) (*Result, error) {
	opts := job.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if job.Template == nil {
		return nil, fmt.Errorf("job has no template")
	}
	if err := job.Template.Validate(); err != nil {
		return nil, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	logger := r.Logger.With("job", shortID(job.ID))

	result := &Result{JobID: job.ID}

	// Stage 1: Allocate
	allocStart := time.Now()
	plan, err := r.Allocate(ctx, job.Template, job.Items, opts)
	if err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}
	result.Plan = plan
	result.Stats.AllocateTime = time.Since(allocStart)
	result.Stats.Items = len(job.Items)
	result.Stats.Beds = len(plan.Beds)
	result.Stats.EmptySlots = plan.EmptySlots()

	logger.Info("allocated items",
		"items", len(job.Items),
		"beds", len(plan.Beds),
		"strategy", plan.Strategy,
		"empty_slots", result.Stats.EmptySlots,
		"duration", result.Stats.AllocateTime)

	// Stage 2: Render beds in parallel
	renderStart := time.Now()
	tplHash, err := cache.HashJSON(job.Template)
	if err != nil {
		return nil, fmt.Errorf("hash template: %w", err)
	}
	beds := make([]BedResult, len(plan.Beds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range plan.Beds {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.renderBed(gctx, job.Template, tplHash, &plan.Beds[i], &opts)
			if err != nil {
				return fmt.Errorf("bed %d: %w", plan.Beds[i].Index, err)
			}
			beds[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Beds = beds
	result.Stats.RenderTime = time.Since(renderStart)
	for _, b := range beds {
		if b.CacheHit {
			result.CacheInfo.Hits++
		} else {
			result.CacheInfo.Misses++
		}
	}

	// Stage 3: Manifest
	manifest, err := BuildManifest(job.ID, job.Template, job.Items, plan)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	result.Manifest = manifest

	logger.Info("rendered beds",
		"beds", len(beds),
		"formats", opts.Formats,
		"warnings", len(result.Warnings()),
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Allocate partitions the job's items over beds and, when requested, fills
// empty asset elements with seeded fallback choices.
func (r *Runner) Allocate(ctx context.Context, tpl *template.Template, items []content.Item, opts Options) (*alloc.Plan, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnAllocateStart(ctx, len(items))
	start := time.Now()

	var (
		plan *alloc.Plan
		err  error
	)
	switch opts.Strategy {
	case alloc.StrategyShelf:
		plan, err = alloc.AllocateWith(alloc.ShelfFor(tpl, opts.GutterMM, opts.Keepouts), items, opts.Seed)
	default:
		plan, err = alloc.Allocate(tpl.Tiling, items, opts.Seed)
	}
	if err == nil && opts.FillDefaults {
		plan = alloc.FillDefaults(plan, &tpl.Part)
	}

	beds := 0
	if plan != nil {
		beds = len(plan.Beds)
	}
	hooks.OnAllocateComplete(ctx, beds, time.Since(start), err)
	return plan, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderContent renders a single bed whose slots are already assigned, the
// way a content document describes them. No allocation takes place.
func (r *Runner) RenderContent(ctx context.Context, tpl *template.Template, set *content.Set, opts Options) (*BedResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if tpl == nil {
		return nil, fmt.Errorf("no template")
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	if set == nil {
		set = &content.Set{}
	}
	tplHash, err := cache.HashJSON(tpl)
	if err != nil {
		return nil, fmt.Errorf("hash template: %w", err)
	}
	bed := alloc.BedFromContent(0, tpl.Tiling, set)
	if opts.FillDefaults {
		plan := &alloc.Plan{Seed: opts.Seed, Items: len(set.Slots), Beds: []alloc.BedAssignment{bed}}
		bed = alloc.FillDefaults(plan, &tpl.Part).Beds[0]
	}
	return r.renderBed(ctx, tpl, tplHash, &bed, &opts)
}
