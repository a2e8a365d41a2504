package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/alloc"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/pipeline"
	"github.com/matzehuels/bedforge/pkg/template"
)

// planCommand creates the plan command, which allocates without rendering.
func (c *CLI) planCommand() *cobra.Command {
	var (
		job    jobFlags
		tables tableFlags
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:               "plan <template> <content>",
		Short:             "Show how items are assigned to beds",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			opts, tpl, err := c.options(&job, tpl)
			if err != nil {
				return err
			}
			in, err := loadInput(args[1], tpl, &tables)
			if err != nil {
				return err
			}
			plan, err := planInput(ctx, c, tpl, in, opts)
			if err != nil {
				return err
			}

			if asJSON {
				out, err := openOutput(output)
				if err != nil {
					return err
				}
				defer out.Close()
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}

			printSuccess("%d items on %d beds (%s, seed %d)", plan.Items, len(plan.Beds), plan.Strategy, plan.Seed)
			printTable(planHeaders, planRows(tpl, plan, in.items))
			if n := plan.EmptySlots(); n > 0 {
				printDetail("%d empty slots", n)
			}
			return nil
		},
	}

	job.register(cmd)
	tables.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to a file instead of stdout")
	return cmd
}

// planInput allocates items, or wraps fixed slots as a single bed.
func planInput(ctx context.Context, c *CLI, tpl *template.Template, in *input, opts pipeline.Options) (*alloc.Plan, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if in.set != nil {
		bed := alloc.BedFromContent(0, tpl.Tiling, in.set)
		return &alloc.Plan{Seed: opts.Seed, Strategy: "content", Items: len(in.set.Slots), Beds: []alloc.BedAssignment{bed}}, nil
	}
	return pipeline.NewRunner(nil, nil, c.Logger).Allocate(ctx, tpl, in.items, opts)
}

var planHeaders = []string{"Bed", "Slot", "Row", "Col", "X mm", "Y mm", "Order", "Content"}

func planRows(tpl *template.Template, plan *alloc.Plan, items []content.Item) [][]string {
	var rows [][]string
	for _, bed := range plan.Beds {
		for _, p := range bed.Placements {
			origin := tpl.TileOrigin(p.Row, p.Col)
			if p.Origin != nil {
				origin = *p.Origin
			}
			ref := ""
			if p.Item < len(items) {
				ref = items[p.Item].OrderRef
			}
			rows = append(rows, []string{
				strconv.Itoa(bed.Index + 1),
				strconv.Itoa(p.Slot),
				strconv.Itoa(p.Row),
				strconv.Itoa(p.Col),
				geom.Num(origin.X),
				geom.Num(origin.Y),
				ref,
				summarize(p.Values, 40),
			})
		}
	}
	return rows
}

// summarize renders values as "id=value" pairs in element-id order, cut to limit runes.
func summarize(v content.Values, limit int) string {
	ids := make([]string, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s=%s", id, strings.ReplaceAll(v[id].Ref(), "\n", " ")))
	}
	s := strings.Join(parts, " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}
