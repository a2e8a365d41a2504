package ingest

import (
	"io"
	"strconv"
	"strings"
	"unicode"
)

// SKUResolver maps a product SKU to a template id.
type SKUResolver interface {
	TemplateForSKU(sku string) (string, bool)
}

// SKUMeta is one row of a SKU list.
type SKUMeta struct {
	SKU           string
	TemplateID    string
	RequiresPhoto bool
	Attrs         map[string]string
}

// SKUMap is an in-memory SKU list. Lookups ignore case, surrounding space
// and, as a fallback, all inner whitespace.
type SKUMap map[string]SKUMeta

// ReadSKUMap parses a SKU list with at least a "sku" column. Optional
// columns are "template_id" and "requires_photo"; the rest are kept as
// attributes.
func ReadSKUMap(r io.Reader) (SKUMap, error) {
	t, err := ReadTable(r, ReadOptions{})
	if err != nil {
		return nil, err
	}
	skuCol, ok := t.Column("sku")
	if !ok {
		return SKUMap{}, nil
	}
	tmplCol, hasTmpl := t.Column("template_id")
	photoCol, hasPhoto := t.Column("requires_photo")

	m := SKUMap{}
	for _, row := range t.Rows {
		sku := row[skuCol]
		if sku == "" {
			continue
		}
		meta := SKUMeta{SKU: sku, Attrs: map[string]string{}}
		if hasTmpl {
			meta.TemplateID = row[tmplCol]
		}
		if hasPhoto {
			meta.RequiresPhoto, _ = strconv.ParseBool(row[photoCol])
		}
		for i, h := range t.Headers {
			meta.Attrs[h] = row[i]
		}
		m.Add(meta)
	}
	return m, nil
}

// Add registers meta under both normalised forms of its SKU.
func (m SKUMap) Add(meta SKUMeta) {
	m[NormalizeSKU(meta.SKU)] = meta
	m[squashSKU(meta.SKU)] = meta
}

// Lookup finds a SKU.
func (m SKUMap) Lookup(sku string) (SKUMeta, bool) {
	if meta, ok := m[NormalizeSKU(sku)]; ok {
		return meta, true
	}
	meta, ok := m[squashSKU(sku)]
	return meta, ok
}

// TemplateForSKU implements SKUResolver.
func (m SKUMap) TemplateForSKU(sku string) (string, bool) {
	meta, ok := m.Lookup(sku)
	if !ok || meta.TemplateID == "" {
		return "", false
	}
	return meta.TemplateID, true
}

// NormalizeSKU lowercases and trims a SKU.
func NormalizeSKU(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func squashSKU(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
