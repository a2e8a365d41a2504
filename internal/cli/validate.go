package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/anchor"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// validateCommand checks a template and, optionally, content against it.
func (c *CLI) validateCommand() *cobra.Command {
	var tables tableFlags

	cmd := &cobra.Command{
		Use:               "validate <template> [content]",
		Short:             "Check a template (and content) without rendering",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := loadTemplate(args[0])
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			boxes, err := anchor.Resolve(&tpl.Part)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			printSuccess("Template is valid")
			printKeyValue("Bed", fmt.Sprintf("%s x %s mm", geom.Num(tpl.Bed.WidthMM), geom.Num(tpl.Bed.HeightMM)))
			printKeyValue("Part", fmt.Sprintf("%s x %s mm", geom.Num(tpl.Part.WidthMM), geom.Num(tpl.Part.HeightMM)))
			printKeyValue("Tiling", fmt.Sprintf("%d x %d (%d slots)", tpl.Tiling.Rows, tpl.Tiling.Cols, tpl.Tiling.Capacity()))
			printTable(elementHeaders, elementRows(tpl, boxes))

			if len(args) < 2 {
				return nil
			}
			in, err := loadInput(args[1], tpl, &tables)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			if in.set != nil {
				if err := in.set.Validate(&tpl.Part); err != nil {
					printError("%s", errors.UserMessage(err))
					return err
				}
			}
			for _, w := range in.warnings {
				printWarning("%s", w.String())
			}
			printSuccess("Content is valid (%d entries)", in.count())
			return nil
		},
	}
	tables.register(cmd)
	return cmd
}

var elementHeaders = []string{"Z", "Element", "Type", "Box (resolved)", "Anchor", "Editable"}

func elementRows(tpl *template.Template, boxes map[string]geom.Box) [][]string {
	var rows [][]string
	for i, e := range tpl.Part.ZOrder() {
		b := boxes[e.ID]
		anchorTo := "-"
		if e.IsAnchored() {
			anchorTo = fmt.Sprintf("%s @ %s", e.AnchorTo, e.Anchor())
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			e.ID,
			string(e.Kind),
			fmt.Sprintf("%s,%s %sx%s", geom.Num(b.X), geom.Num(b.Y), geom.Num(b.W), geom.Num(b.H)),
			anchorTo,
			strconv.FormatBool(e.Editable),
		})
	}
	return rows
}
