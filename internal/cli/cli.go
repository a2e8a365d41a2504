package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/buildinfo"
	"github.com/matzehuels/bedforge/pkg/cache"
	"github.com/matzehuels/bedforge/pkg/config"
	"github.com/matzehuels/bedforge/pkg/pipeline"
	"github.com/matzehuels/bedforge/pkg/store"
	"github.com/matzehuels/bedforge/pkg/template"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "bedforge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Bedforge lays out personalised parts on print beds",
		Long:         `Bedforge fills a print bed template with per-item content, packs items onto as many beds as needed and renders each bed as an editable SVG (optionally PDF or PNG) ready for a laser or UV printer.`,
		Version:      buildinfo.Info().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/bedforge/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.anchorsCommand())
	root.AddCommand(c.ingestCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Namespace+":")
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, cfg.Cache.Backend, cfg.Cache.Dir, cfg.Cache.RedisURL)
	if err != nil {
		if cfg.Cache.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return ch, nil
}

// openRegistry opens the template registry named by path, or the configured one.
func (c *CLI) openRegistry(ctx context.Context, path string) (*store.Store, error) {
	if path == "" {
		cfg, err := c.config()
		if err != nil {
			return nil, err
		}
		path = cfg.Registry.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no registry path configured")
	}
	return store.Open(ctx, path)
}

// =============================================================================
// Job Flags
// =============================================================================

// jobFlags holds the options shared by commands that allocate or render.
type jobFlags struct {
	seed         uint64
	strategy     string
	gutter       float64
	machine      string
	assets       string
	fillDefaults bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for default choices (default from config, 42)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "allocation strategy: sequential (default), shelf")
	cmd.Flags().Float64Var(&f.gutter, "gutter", 0, "gap between parts for the shelf strategy, in mm")
	cmd.Flags().StringVar(&f.machine, "machine", "", "machine profile from the config file")
	cmd.Flags().StringVar(&f.assets, "assets", "", "directory of image and graphic assets")
	cmd.Flags().BoolVar(&f.fillDefaults, "fill-defaults", false, "fill empty images and graphics from element fallbacks")
}

// options builds pipeline options from flags and config, and applies the
// machine profile to tpl.
func (c *CLI) options(f *jobFlags, tpl *template.Template) (pipeline.Options, *template.Template, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	opts := pipeline.Options{
		Seed:         cfg.Seed,
		Formats:      cfg.Formats,
		PNGScale:     cfg.PNGScale,
		Concurrency:  cfg.Concurrency,
		Strategy:     f.strategy,
		GutterMM:     f.gutter,
		FillDefaults: f.fillDefaults,
		Logger:       c.Logger,
	}
	if f.seed != 0 {
		opts.Seed = f.seed
	}
	if f.machine != "" {
		m, err := cfg.Machine(f.machine)
		if err != nil {
			return opts, nil, err
		}
		tpl = m.Apply(tpl)
		opts.Keepouts = m.KeepoutBoxes()
		if opts.GutterMM == 0 {
			opts.GutterMM = m.GutterMM
		}
		c.Logger.Debug("applied machine profile", "machine", f.machine, "bed", fmt.Sprintf("%vx%v", tpl.Bed.WidthMM, tpl.Bed.HeightMM))
	}
	if f.assets != "" {
		a, err := pipeline.LoadAssets(f.assets)
		if err != nil {
			return opts, nil, err
		}
		c.Logger.Debug("loaded assets", "dir", f.assets, "count", a.Len())
		opts.Assets = a
	}
	return opts, tpl, nil
}

// =============================================================================
// Input Loading
// =============================================================================

// loadTemplate reads a template file, or a built-in preset when ref names one.
func loadTemplate(ref string) (*template.Template, error) {
	if _, err := os.Stat(ref); err != nil {
		if tpl, perr := template.Preset(ref); perr == nil {
			return tpl, nil
		}
	}
	return template.ParseFile(ref)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
