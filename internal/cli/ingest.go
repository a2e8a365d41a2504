package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/ingest"
)

// ingestCommand converts a delimited order export into an items or content
// document that render and the HTTP API accept.
func (c *CLI) ingestCommand() *cobra.Command {
	var (
		tables     tableFlags
		tplRef     string
		output     string
		asContent  bool
		templateID string
	)

	cmd := &cobra.Command{
		Use:   "ingest <table>",
		Short: "Convert a CSV/TSV order export to a JSON items document",
		Long: `Ingest reads a delimited file and writes a JSON document.

By default every row becomes an item, repeated by its quantity column, and
SKUs are resolved to template ids with --skus. With --content the rows are
written as fixed slots (row n fills slot n) for a single bed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			tpl, err := loadTemplate(tplRef)
			if err != nil {
				return err
			}

			var doc any
			var n int
			if asContent {
				t, mapping, err := readTable(args[0], tpl, &tables)
				if err != nil {
					return err
				}
				set := ingest.ToContent(t, mapping, &tpl.Part)
				if err := set.Validate(&tpl.Part); err != nil {
					return err
				}
				doc, n = set, len(set.Slots)
			} else {
				in, err := loadTable(args[0], tpl, &tables)
				if err != nil {
					return err
				}
				for i := range in.items {
					if in.items[i].TemplateID == "" {
						in.items[i].TemplateID = templateID
					}
				}
				for _, w := range in.warnings {
					printWarning("%s", w.String())
				}
				doc, n = struct {
					Items []content.Item `json:"items"`
				}{in.items}, len(in.items)
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()
			if _, err := out.Write(append(data, '\n')); err != nil {
				return err
			}
			logger.Debug("ingested", "file", args[0], "entries", n)
			return nil
		},
	}

	tables.register(cmd)
	cmd.Flags().StringVarP(&tplRef, "template", "t", "", "template file or preset the columns map onto (required)")
	cmd.Flags().StringVar(&templateID, "template-id", "", "template id for rows without a resolved SKU")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asContent, "content", false, "write fixed slots instead of items")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
