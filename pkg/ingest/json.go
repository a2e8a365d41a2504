package ingest

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
)

// JSONMapping locates order lines and their fields in a JSON export.
// Items selects the order lines; the other expressions are evaluated
// against each line and take its first match.
//
//	JSONMapping{
//	    Items:    "$.orders[*].lines[*]",
//	    OrderRef: "$.order_id",
//	    SKU:      "$.sku",
//	    Quantity: "$.qty",
//	    Fields:   map[string]string{"line1": "$.custom.name"},
//	}
type JSONMapping struct {
	Items      string            `json:"items"`
	OrderRef   string            `json:"order_ref,omitempty"`
	SKU        string            `json:"sku,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	Quantity   string            `json:"quantity,omitempty"`
	Fields     map[string]string `json:"fields"`
}

type compiledMapping struct {
	items                    jp.Expr
	orderRef, sku, tmpl, qty jp.Expr
	fieldIDs                 []string
	fields                   map[string]jp.Expr
}

func compileExpr(name, expr string) (jp.Expr, error) {
	if expr == "" {
		return nil, nil
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %s '%s': %w", name, expr, err)
	}
	return x, nil
}

func (m JSONMapping) compile() (*compiledMapping, error) {
	if m.Items == "" {
		return nil, fmt.Errorf("jsonpath items is required")
	}
	c := &compiledMapping{fields: map[string]jp.Expr{}}
	var err error
	if c.items, err = compileExpr("items", m.Items); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name string
		expr string
		dst  *jp.Expr
	}{
		{"order_ref", m.OrderRef, &c.orderRef},
		{"sku", m.SKU, &c.sku},
		{"template_id", m.TemplateID, &c.tmpl},
		{"quantity", m.Quantity, &c.qty},
	} {
		if *f.dst, err = compileExpr(f.name, f.expr); err != nil {
			return nil, err
		}
	}
	for id, expr := range m.Fields {
		x, err := compileExpr("fields."+id, expr)
		if err != nil {
			return nil, err
		}
		c.fields[id] = x
		c.fieldIDs = append(c.fieldIDs, id)
	}
	sort.Strings(c.fieldIDs)
	return c, nil
}

// ParseJSONOrders extracts items from a JSON order export. Field values may
// be strings, numbers or photo objects. Template resolution and quantity
// handling follow [ToItems]; opts.Mapping is ignored.
func ParseJSONOrders(data []byte, m JSONMapping, opts OrderOptions) ([]content.Item, []errors.Warning, error) {
	c, err := m.compile()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "order mapping")
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "parse order export")
	}

	var (
		items    []content.Item
		warnings []errors.Warning
	)
	for i, line := range c.items.Get(doc) {
		path := errors.Path("items", i)
		item := content.Item{Values: content.Values{}}
		item.OrderRef = scalar(first(c.orderRef, line))

		for _, id := range c.fieldIDs {
			raw := first(c.fields[id], line)
			if raw == nil {
				continue
			}
			var v content.Value
			if _, isMap := raw.(map[string]any); isMap {
				if v, err = content.ParseValue(errors.Path(path, id), raw); err != nil {
					return nil, nil, err
				}
			} else {
				v = content.String(scalar(raw))
			}
			if !v.IsZero() {
				item.Values[id] = v
			}
		}

		sku := scalar(first(c.sku, line))
		switch tmpl := scalar(first(c.tmpl, line)); {
		case tmpl != "":
			item.TemplateID = tmpl
		case sku != "":
			if id, ok := resolveSKU(opts.SKUs, sku); ok {
				item.TemplateID = id
			} else {
				item.TemplateID = opts.DefaultTemplate
				warnings = append(warnings, errors.Warning{
					Code:    errors.ErrCodeUnknownSKU,
					Slot:    i,
					Message: fmt.Sprintf("no template for sku %q", sku),
				})
			}
		default:
			item.TemplateID = opts.DefaultTemplate
		}

		qty := 1
		if q := scalar(first(c.qty, line)); q != "" {
			n, err := parseQuantity(q)
			if err != nil {
				return nil, nil, errors.Invalid(errors.ErrCodeInvalidRange, errors.Path(path, "quantity"), "%v", err)
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

func first(x jp.Expr, data any) any {
	if x == nil {
		return nil
	}
	return x.First(data)
}

// scalar renders a JSON scalar as text. Integral floats print without a
// fraction so quantities and ids survive.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
