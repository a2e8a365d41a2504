package ingest

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Well-known order columns, matched case-insensitively in this order.
var (
	orderRefColumns = []string{"amazon-order-id", "order-id", "order_id", "order_ref"}
	skuColumns      = []string{"sku", "seller-sku"}
	qtyColumns      = []string{"quantity", "quantity-purchased", "qty"}
	templateColumns = []string{"template_id", "template"}
	slotColumns     = []string{"slot_index"}
)

// MaxQuantity bounds the per-row repeat count.
const MaxQuantity = 1000

// OrderOptions controls conversion of order rows into items.
type OrderOptions struct {
	// Mapping maps value columns to element ids.
	Mapping Mapping
	// Part enables asset handling for image and graphic columns.
	Part *template.Part
	// SKUs resolves a row's SKU to a template id when the row has no
	// explicit template column.
	SKUs SKUResolver
	// DefaultTemplate is used when nothing else names a template.
	DefaultTemplate string
}

// ToItems converts order rows into items. A row with quantity n yields n
// items. Rows whose SKU cannot be resolved fall back to DefaultTemplate and
// produce an UNKNOWN_SKU warning; the warning's Slot is the row index.
func ToItems(t *Table, opts OrderOptions) ([]content.Item, []errors.Warning, error) {
	cols := bind(t, opts.Mapping, opts.Part)
	refCol, hasRef := t.Lookup(orderRefColumns...)
	skuCol, hasSKU := t.Lookup(skuColumns...)
	qtyCol, hasQty := t.Lookup(qtyColumns...)
	tmplCol, hasTmpl := t.Lookup(templateColumns...)
	slotCol, hasSlot := t.Lookup(slotColumns...)

	var (
		items    []content.Item
		warnings []errors.Warning
	)
	for i, row := range t.Rows {
		item := content.Item{Values: rowValues(row, cols)}
		if hasRef {
			item.OrderRef = row[refCol]
		}

		switch {
		case hasTmpl && row[tmplCol] != "":
			item.TemplateID = row[tmplCol]
		case hasSKU && row[skuCol] != "":
			if id, ok := resolveSKU(opts.SKUs, row[skuCol]); ok {
				item.TemplateID = id
			} else {
				item.TemplateID = opts.DefaultTemplate
				warnings = append(warnings, errors.Warning{
					Code:    errors.ErrCodeUnknownSKU,
					Slot:    i,
					Message: fmt.Sprintf("no template for sku %q", row[skuCol]),
				})
			}
		default:
			item.TemplateID = opts.DefaultTemplate
		}

		if hasSlot && row[slotCol] != "" {
			n, err := strconv.Atoi(row[slotCol])
			if err != nil || n < 0 {
				return nil, nil, errors.Invalid(errors.ErrCodeInvalidRange, errors.Path("rows", i, "slot_index"), "must be a non-negative integer, got %q", row[slotCol])
			}
			item.SlotIndex = &n
		}

		qty := 1
		if hasQty && row[qtyCol] != "" {
			n, err := parseQuantity(row[qtyCol])
			if err != nil {
				return nil, nil, errors.Invalid(errors.ErrCodeInvalidRange, errors.Path("rows", i, "quantity"), "%v", err)
			}
			qty = n
		}
		for q := 0; q < qty; q++ {
			it := item
			it.Values = item.Values.Clone()
			items = append(items, it)
		}
	}
	return items, warnings, nil
}

func resolveSKU(r SKUResolver, sku string) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.TemplateForSKU(sku)
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("must be an integer, got %q", s)
		}
		n = int(f)
	}
	if n < 1 || n > MaxQuantity {
		return 0, fmt.Errorf("must be between 1 and %d, got %d", MaxQuantity, n)
	}
	return n, nil
}
