package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bedforge/internal/decode"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/ingest"
	"github.com/matzehuels/bedforge/pkg/template"
)

// input is the content side of a job: either fixed slots for one bed or a
// list of items to allocate.
type input struct {
	set      *content.Set
	items    []content.Item
	warnings []errors.Warning
}

// count returns the number of items or filled slots.
func (in *input) count() int {
	if in.set != nil {
		return len(in.set.Slots)
	}
	return len(in.items)
}

// tableFlags controls how delimited files become items.
type tableFlags struct {
	mapping   []string
	noHeader  bool
	delimiter string
	skus      string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.mapping, "map", nil, "column=element mapping for CSV input (repeatable; default: detect from headers)")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "CSV input has no header row; columns map by position")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter (default: from extension, or sniffed)")
	cmd.Flags().StringVar(&f.skus, "skus", "", "CSV of sku,template_id rows for resolving order SKUs")
}

// isTable reports whether path holds delimited text rather than a document.
func isTable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".tab", ".txt":
		return true
	}
	return false
}

// loadInput reads content for tpl from path. Delimited files become items;
// JSON or YAML documents with an "items" list become items; any other
// document is read as fixed slots.
func loadInput(path string, tpl *template.Template, f *tableFlags) (*input, error) {
	if isTable(path) {
		return loadTable(path, tpl, f)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	format := decode.FormatFromPath(path)
	doc, err := decode.Document(data, format)
	if err != nil {
		return nil, err
	}
	if _, ok := doc["items"]; ok {
		items, err := content.ParseItems(data, format)
		if err != nil {
			return nil, err
		}
		return &input{items: items}, nil
	}
	set, err := content.FromMap(doc)
	if err != nil {
		return nil, err
	}
	return &input{set: set}, nil
}

func loadTable(path string, tpl *template.Template, f *tableFlags) (*input, error) {
	t, mapping, err := readTable(path, tpl, f)
	if err != nil {
		return nil, err
	}
	orderOpts := ingest.OrderOptions{Mapping: mapping, Part: &tpl.Part}
	if f.skus != "" {
		skus, err := readSKUs(f.skus)
		if err != nil {
			return nil, err
		}
		orderOpts.SKUs = skus
	}
	items, warnings, err := ingest.ToItems(t, orderOpts)
	if err != nil {
		return nil, err
	}
	return &input{items: items, warnings: warnings}, nil
}

// readTable reads a delimited file and the column mapping for tpl, detected
// from the headers unless --map was given.
func readTable(path string, tpl *template.Template, f *tableFlags) (*ingest.Table, ingest.Mapping, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fh.Close()

	opts := ingest.ReadOptions{Delimiter: ingest.DelimiterFor(path), NoHeader: f.noHeader}
	if f.delimiter != "" {
		d := []rune(f.delimiter)
		if f.delimiter == `\t` {
			d = []rune{'\t'}
		}
		if len(d) != 1 {
			return nil, nil, fmt.Errorf("delimiter must be a single character, got %q", f.delimiter)
		}
		opts.Delimiter = d[0]
	}
	t, err := ingest.ReadTable(fh, opts)
	if err != nil {
		return nil, nil, err
	}

	mapping, err := parseMapping(f.mapping)
	if err != nil {
		return nil, nil, err
	}
	if mapping == nil {
		mapping = ingest.DetectMapping(t.Headers, ingest.EditableIDs(&tpl.Part))
	}
	return t, mapping, nil
}

func readSKUs(path string) (ingest.SKUMap, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return ingest.ReadSKUMap(fh)
}

// parseMapping parses "column=element" pairs. No pairs yields nil.
func parseMapping(pairs []string) (ingest.Mapping, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := ingest.Mapping{}
	for _, p := range pairs {
		col, elem, ok := strings.Cut(p, "=")
		col, elem = strings.TrimSpace(col), strings.TrimSpace(elem)
		if !ok || col == "" || elem == "" {
			return nil, fmt.Errorf("invalid mapping %q (want column=element)", p)
		}
		m[col] = elem
	}
	return m, nil
}
