package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/pipeline"
	"github.com/matzehuels/bedforge/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	job        jobFlags
	table      tableFlags
	outputDir  string // directory for bed files and the manifest
	name       string // file name prefix (default: content file name)
	formats    string // comma-separated output formats
	pngScale   float64
	noMetadata bool
	noCache    bool
	refresh    bool
	manifest   bool
}

// renderCommand creates the render command.
//
// Output files are named <name>-bed-<n>.<ext>, one per bed and format, plus
// <name>-manifest.csv describing where every item was placed.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{manifest: true}

	cmd := &cobra.Command{
		Use:   "render <template> <content>",
		Short: "Render content onto print beds",
		Long: `Render fills the template with content and writes one drawing per bed.

The template is a JSON, YAML or TOML file, or the name of a built-in preset.
Content is one of:
  - a document with "slots" (fixed slot indices, a single bed)
  - a document with "items" (allocated over as many beds as needed)
  - a CSV/TSV order export (one item per row, repeated by quantity)`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], args[1], &opts)
		},
	}

	opts.job.register(cmd)
	opts.table.register(cmd)
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory (default from config, .)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "output file prefix (default: content file name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), pdf, png (comma-separated)")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", 0, "PNG zoom factor (default from config, 2)")
	cmd.Flags().BoolVar(&opts.noMetadata, "no-metadata", false, "omit descriptive comments from drawings")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the drawing cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&opts.manifest, "manifest", opts.manifest, "write the placement manifest CSV")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, tplPath, contentPath string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	tpl, err := loadTemplate(tplPath)
	if err != nil {
		return err
	}
	jobOpts, tpl, err := c.options(&opts.job, tpl)
	if err != nil {
		return err
	}
	if f := parseFormats(opts.formats); f != nil {
		jobOpts.Formats = f
	}
	if opts.pngScale > 0 {
		jobOpts.PNGScale = opts.pngScale
	}
	jobOpts.NoMetadata = opts.noMetadata
	jobOpts.Refresh = opts.refresh
	if err := jobOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if needsConverter(jobOpts.Formats) && !render.ConverterAvailable() {
		return errors.New(errors.ErrCodeUnsupported, "pdf and png export require rsvg-convert on PATH")
	}

	in, err := loadInput(contentPath, tpl, &opts.table)
	if err != nil {
		return err
	}
	for _, w := range in.warnings {
		printWarning("%s", w.String())
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	outDir := opts.outputDir
	if outDir == "" {
		cfg, err := c.config()
		if err != nil {
			return err
		}
		outDir = cfg.OutputDir
	}
	name := opts.name
	if name == "" {
		name = baseName(contentPath)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d items...", in.count()))
	spinner.Start()

	var (
		beds     []pipeline.BedResult
		manifest []byte
		jobID    string
	)
	if in.set != nil {
		bed, err := runner.RenderContent(ctx, tpl, in.set, jobOpts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		beds = []pipeline.BedResult{*bed}
	} else {
		res, err := runner.Generate(ctx, pipeline.Job{Template: tpl, Items: in.items, Options: jobOpts})
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		beds, manifest, jobID = res.Beds, res.Manifest, res.JobID
	}
	spinner.Update(fmt.Sprintf("Writing %d beds...", len(beds)))

	files, err := writeOutputs(outDir, name, beds, jobOpts.Formats)
	if err != nil {
		spinner.StopWithError("Write failed")
		return err
	}
	if opts.manifest && manifest != nil {
		path := filepath.Join(outDir, name+"-manifest.csv")
		if err := writeFile(path, manifest); err != nil {
			spinner.StopWithError("Write failed")
			return err
		}
		files = append(files, path)
	}
	spinner.Stop()

	printSuccess("Rendered %d items onto %d beds", in.count(), len(beds))
	printBedStats(beds)
	printWarnings(beds)
	for _, f := range files {
		printFile(f)
	}
	if jobID != "" {
		logger.Debug("job complete", "job", jobID)
	}
	prog.done("Done")
	return nil
}

// writeOutputs writes every bed in every format and returns the paths written.
func writeOutputs(dir, name string, beds []pipeline.BedResult, formats []string) ([]string, error) {
	var files []string
	for _, bed := range beds {
		for _, f := range formats {
			parsed, err := render.ParseFormats(f)
			if err != nil {
				return files, err
			}
			for _, ff := range parsed {
				path := filepath.Join(dir, bedFileName(name, bed.Index, ff))
				if err := writeFile(path, bed.Artifacts[string(ff)]); err != nil {
					return files, err
				}
				files = append(files, path)
			}
		}
	}
	return files, nil
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		parsed, err := render.ParseFormats(f)
		if err != nil {
			continue
		}
		for _, p := range parsed {
			if p != render.FormatSVG {
				return true
			}
		}
	}
	return false
}

// bedFileName returns the output name for one bed. Bed numbers in file
// names start at 1.
func bedFileName(name string, bed int, f render.Format) string {
	return fmt.Sprintf("%s-bed-%02d%s", name, bed+1, f.Ext())
}

// baseName strips directory and extension from path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// nopCloser wraps a writer (e.g. stdout) that must not be closed.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, else creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
