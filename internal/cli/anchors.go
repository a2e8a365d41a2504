package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/dag"
)

// anchorsCommand exports a template's anchor graph for debugging anchor chains.
func (c *CLI) anchorsCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:               "anchors <template>",
		Short:             "Export the element anchor graph as DOT or SVG",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			g, err := tpl.Part.AnchorGraph()
			if err != nil {
				return err
			}
			dot := dag.ToDOT(g)

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				if data, err = dag.RenderSVG(cmd.Context(), dot); err != nil {
					return err
				}
			default:
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()
			_, err = out.Write(data)
			if err == nil && output != "" {
				loggerFromContext(cmd.Context()).Infof("Generated %s (%d elements, %d anchors)", output, g.NodeCount(), g.EdgeCount())
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
