package ingest

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/template"
)

// Mapping maps table columns to element ids. Keys are header names, or
// column indexes ("0", "1", ...) for tables without a header.
type Mapping map[string]string

// Columns returns the mapped column keys in a stable order.
func (m Mapping) Columns() []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// DetectMapping maps headers to element ids. An exact case-insensitive match
// wins; otherwise a header containing an id (or contained in one) maps to
// the first such id. Without headers, columns map to ids by position.
func DetectMapping(headers []string, elementIDs []string) Mapping {
	m := Mapping{}
	if headers == nil {
		for i, id := range elementIDs {
			m[strconv.Itoa(i)] = id
		}
		return m
	}

	for _, h := range headers {
		hl := strings.ToLower(strings.TrimSpace(h))
		if hl == "" {
			continue
		}
		for _, id := range elementIDs {
			if strings.ToLower(id) == hl {
				m[h] = id
				break
			}
		}
		if _, ok := m[h]; ok {
			continue
		}
		for _, id := range elementIDs {
			il := strings.ToLower(id)
			if strings.Contains(hl, il) || strings.Contains(il, hl) {
				m[h] = id
				break
			}
		}
	}
	return m
}

// EditableIDs returns the ids of a part's editable elements in document order.
func EditableIDs(part *template.Part) []string {
	var ids []string
	for i := range part.Elements {
		if part.Elements[i].Editable {
			ids = append(ids, part.Elements[i].ID)
		}
	}
	return ids
}

type boundColumn struct {
	index int
	id    string
	asset bool
}

// bind resolves mapping keys to column indexes, dropping columns the table
// lacks.
func bind(t *Table, m Mapping, part *template.Part) []boundColumn {
	var out []boundColumn
	for _, col := range m.Columns() {
		i, ok := t.Column(col)
		if !ok {
			continue
		}
		id := m[col]
		asset := isAssetColumn(col)
		if part != nil {
			if e, ok := part.Element(id); ok {
				asset = e.AcceptsAsset()
			}
		}
		out = append(out, boundColumn{index: i, id: id, asset: asset})
	}
	return out
}

func isAssetColumn(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "graphic") || strings.Contains(n, "image") || strings.Contains(n, "photo")
}

// assetRef adds a .png extension to bare graphic names like "Cat". URLs and
// paths pass through.
func assetRef(v string) string {
	if v == "" || strings.Contains(v, "://") || strings.HasPrefix(v, "/") || strings.HasPrefix(v, "data:") {
		return v
	}
	switch strings.ToLower(path.Ext(v)) {
	case ".png", ".jpg", ".jpeg", ".svg":
		return v
	}
	return v + ".png"
}

func rowValues(row []string, cols []boundColumn) content.Values {
	vals := content.Values{}
	for _, c := range cols {
		v := row[c.index]
		if v == "" {
			continue
		}
		if c.asset {
			v = assetRef(v)
		}
		vals[c.id] = content.String(v)
	}
	return vals
}

// ToContent converts every row into a slot, slot index equal to the row
// index. part may be nil; when given, columns mapped to image and graphic
// elements get asset reference handling.
func ToContent(t *Table, m Mapping, part *template.Part) *content.Set {
	cols := bind(t, m, part)
	set := &content.Set{Slots: make([]content.Slot, len(t.Rows))}
	for i, row := range t.Rows {
		set.Slots[i] = content.Slot{Index: i, Values: rowValues(row, cols)}
	}
	return set
}
