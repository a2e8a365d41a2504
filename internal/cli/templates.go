package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/store"
)

// templatesCommand manages the template registry the server resolves
// template ids and SKUs against.
func (c *CLI) templatesCommand() *cobra.Command {
	var registry string

	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Manage the template registry",
	}
	cmd.PersistentFlags().StringVar(&registry, "registry", "", "registry database (default from config)")

	open := func(cmd *cobra.Command) (*store.Store, error) {
		return c.openRegistry(cmd.Context(), registry)
	}

	cmd.AddCommand(c.templatesImportCommand(open))
	cmd.AddCommand(c.templatesListCommand(open))
	cmd.AddCommand(c.templatesShowCommand(open))
	cmd.AddCommand(c.templatesDeleteCommand(open))
	cmd.AddCommand(c.templatesSKUsCommand(open))
	return cmd
}

type openFunc func(cmd *cobra.Command) (*store.Store, error)

func (c *CLI) templatesImportCommand(open openFunc) *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "import <file|preset>",
		Short: "Validate a template and store it under an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := loadTemplate(args[0])
			if err != nil {
				return err
			}
			if id == "" {
				id = baseName(args[0])
			}
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.PutTemplate(cmd.Context(), id, name, tpl); err != nil {
				return err
			}
			printSuccess("Stored template %s", id)
			printNextStep("Serve it", "bedforge serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "template id (default: file name)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func (c *CLI) templatesListCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			infos, err := st.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No templates stored")
				return nil
			}
			printTable(templateHeaders, templateRows(infos))
			return nil
		},
	}
}

var templateHeaders = []string{"ID", "Name", "Bed (mm)", "Tiling", "Elements", "Updated"}

func templateRows(infos []store.TemplateInfo) [][]string {
	rows := make([][]string, 0, len(infos))
	for _, t := range infos {
		rows = append(rows, []string{
			t.ID,
			t.Name,
			fmt.Sprintf("%s x %s", geom.Num(t.BedWidth), geom.Num(t.BedHeight)),
			fmt.Sprintf("%d x %d", t.Rows, t.Cols),
			strconv.Itoa(t.Elements),
			t.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func (c *CLI) templatesShowCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			tpl, err := st.GetTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(tpl, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, string(data))
			return err
		},
	}
}

func (c *CLI) templatesDeleteCommand(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			if _, err := st.GetTemplate(cmd.Context(), args[0]); err != nil {
				printWarning("%s", errors.UserMessage(err))
				return err
			}
			if err := st.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted template %s", args[0])
			return nil
		},
	}
}

func (c *CLI) templatesSKUsCommand(open openFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skus",
		Short: "Manage the SKU to template mapping",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <csv>",
		Short: "Load sku,template_id rows into the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skus, err := readSKUs(args[0])
			if err != nil {
				return err
			}
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			metas := sortedSKUs(skus)
			if err := st.PutSKUs(cmd.Context(), metas); err != nil {
				return err
			}
			printSuccess("Stored %d SKUs", len(metas))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the SKU mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			skus, err := st.SKUs(cmd.Context())
			if err != nil {
				return err
			}
			var rows [][]string
			for _, m := range sortedSKUs(skus) {
				rows = append(rows, []string{m.SKU, m.TemplateID, strconv.FormatBool(m.RequiresPhoto)})
			}
			printTable([]string{"SKU", "Template", "Photo"}, rows)
			return nil
		},
	})
	return cmd
}

// sortedSKUs returns the map's distinct entries ordered by SKU. A SKUMap
// holds each entry under more than one key.
func sortedSKUs(m ingest.SKUMap) []ingest.SKUMeta {
	seen := make(map[string]bool, len(m))
	metas := make([]ingest.SKUMeta, 0, len(m))
	for _, meta := range m {
		if seen[meta.SKU] {
			continue
		}
		seen[meta.SKU] = true
		metas = append(metas, meta)
	}
	slices.SortFunc(metas, func(a, b ingest.SKUMeta) int {
		switch {
		case a.SKU < b.SKU:
			return -1
		case a.SKU > b.SKU:
			return 1
		}
		return 0
	})
	return metas
}
