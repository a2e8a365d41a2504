package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/internal/server"
	"github.com/matzehuels/bedforge/pkg/pipeline"
)

// serveCommand runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		registry string
		assets   string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout HTTP API",
		Long: `Serve exposes layout generation over HTTP:

  GET  /api/layout/health
  POST /api/layout/generate           JSON drawings for every bed
  POST /api/layout/generate/{format}  one bed as svg, pdf or png
  POST /api/jobs                      ingest orders and render them

Template ids and SKUs are resolved against the registry managed with
"bedforge templates".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.openRegistry(ctx, registry)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := server.Options{
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				Logger:       c.Logger,
				Defaults: pipeline.Options{
					Seed:        cfg.Seed,
					Formats:     cfg.Formats,
					PNGScale:    cfg.PNGScale,
					Concurrency: cfg.Concurrency,
				},
			}
			if assets != "" {
				a, err := pipeline.LoadAssets(assets)
				if err != nil {
					return err
				}
				c.Logger.Info("loaded assets", "dir", assets, "count", a.Len())
				opts.Assets = a
			}

			return server.New(runner, st, opts).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&registry, "registry", "", "registry database (default from config)")
	cmd.Flags().StringVar(&assets, "assets", "", "directory of image and graphic assets")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the drawing cache")
	return cmd
}
