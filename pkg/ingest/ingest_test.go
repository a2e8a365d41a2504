package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/errors"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

func read(t *testing.T, s string, opts ReadOptions) *Table {
	t.Helper()
	tbl, err := ReadTable(strings.NewReader(s), opts)
	require.NoError(t, err)
	return tbl
}

func TestReadTableCSV(t *testing.T) {
	tbl := read(t, "\ufeffName,Date\r\n John ,2024\r\n\r\nJane,2025,extra\nSolo\n", ReadOptions{})

	assert.Equal(t, []string{"Name", "Date"}, tbl.Headers)
	assert.Equal(t, [][]string{
		{"John", "2024"},
		{"Jane", "2025"},
		{"Solo", ""},
	}, tbl.Rows)
}

func TestReadTableTSVSniffed(t *testing.T) {
	tbl := read(t, "order-id\tsku\tline_1\n111\tST-1\tHello, world\n", ReadOptions{})
	assert.Equal(t, []string{"order-id", "sku", "line_1"}, tbl.Headers)
	assert.Equal(t, "Hello, world", tbl.Rows[0][2])
}

func TestReadTableNoHeader(t *testing.T) {
	tbl := read(t, "a,b\nc,d,e\n", ReadOptions{NoHeader: true})
	assert.Nil(t, tbl.Headers)
	assert.Equal(t, [][]string{{"a", "b", ""}, {"c", "d", "e"}}, tbl.Rows)

	i, ok := tbl.Column("2")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = tbl.Column("3")
	assert.False(t, ok)
	_, ok = tbl.Column("x")
	assert.False(t, ok)
}

func TestReadTableWindows1252(t *testing.T) {
	tbl := read(t, "Name,City\nJos\xe9,K\xf6ln\n", ReadOptions{})
	assert.Equal(t, [][]string{{"Jos\u00e9", "K\u00f6ln"}}, tbl.Rows)

	tbl = read(t, "Name\nJos\u00e9\n", ReadOptions{})
	assert.Equal(t, "Jos\u00e9", tbl.Rows[0][0], "valid UTF-8 is left alone")
}

func TestDelimiterFor(t *testing.T) {
	assert.Equal(t, '\t', DelimiterFor("orders.TSV"))
	assert.Equal(t, ',', DelimiterFor("a.csv"))
	assert.Equal(t, rune(0), DelimiterFor("a.dat"))
}

func TestDetectMapping(t *testing.T) {
	ids := []string{"line1", "line2", "photo"}

	m := DetectMapping([]string{"LINE1", "Line2 text", "Customer Photo", "Notes"}, ids)
	assert.Equal(t, Mapping{"LINE1": "line1", "Line2 text": "line2", "Customer Photo": "photo"}, m)

	m = DetectMapping(nil, ids)
	assert.Equal(t, Mapping{"0": "line1", "1": "line2", "2": "photo"}, m)
}

func stakePart() *template.Part {
	p := &template.Part{WidthMM: 100, HeightMM: 50}
	p.Elements = []template.Element{
		template.Text("line1", geom.Box{W: 100, H: 10}, 12),
		template.Graphic("art", geom.Box{W: 100, H: 50}, ""),
	}
	return p
}

func TestToContent(t *testing.T) {
	tbl := read(t, "Name,Art\nJohn,Cat\nJane,\n", ReadOptions{})
	set := ToContent(tbl, Mapping{"Name": "line1", "Art": "art", "Missing": "x"}, stakePart())

	require.Len(t, set.Slots, 2)
	assert.Equal(t, 0, set.Slots[0].Index)
	assert.Equal(t, content.String("John"), set.Slots[0].Values["line1"])
	assert.Equal(t, content.String("Cat.png"), set.Slots[0].Values["art"])
	_, ok := set.Slots[1].Values["art"]
	assert.False(t, ok, "empty cells are content gaps")
}

func TestAssetRef(t *testing.T) {
	tests := map[string]string{
		"Cat":                     "Cat.png",
		"Cat.SVG":                 "Cat.SVG",
		"/static/x":               "/static/x",
		"https://example.com/a":   "https://example.com/a",
		"data:image/png;base64,x": "data:image/png;base64,x",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, assetRef(in), in)
	}
}

func TestSKUMap(t *testing.T) {
	m, err := ReadSKUMap(strings.NewReader("SKU,template_id,requires_photo,TYPE\nST 140 Black,stake-140,true,Regular Stake\nX-1,,false,\n"))
	require.NoError(t, err)

	meta, ok := m.Lookup("  st 140 black ")
	require.True(t, ok)
	assert.True(t, meta.RequiresPhoto)
	assert.Equal(t, "Regular Stake", meta.Attrs["TYPE"])

	id, ok := m.TemplateForSKU("ST140BLACK")
	assert.True(t, ok)
	assert.Equal(t, "stake-140", id)

	_, ok = m.TemplateForSKU("X-1")
	assert.False(t, ok, "sku without template id")
}

func TestToItems(t *testing.T) {
	skus := SKUMap{}
	skus.Add(SKUMeta{SKU: "ST-1", TemplateID: "stake"})

	tbl := read(t, "order-id\tsku\tquantity\tline1\n"+
		"111\tST-1\t2\tHello\n"+
		"222\tNOPE\t1\tWorld\n"+
		"333\t\t\tThird\n", ReadOptions{})

	items, warnings, err := ToItems(tbl, OrderOptions{
		Mapping:         Mapping{"line1": "line1"},
		SKUs:            skus,
		DefaultTemplate: "fallback",
	})
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "111", items[0].OrderRef)
	assert.Equal(t, "stake", items[0].TemplateID)
	assert.Equal(t, items[0], items[1])
	assert.Equal(t, "fallback", items[2].TemplateID)
	assert.Equal(t, "fallback", items[3].TemplateID)
	assert.Equal(t, content.String("Third"), items[3].Values["line1"])

	require.Len(t, warnings, 1)
	assert.Equal(t, errors.ErrCodeUnknownSKU, warnings[0].Code)
	assert.Equal(t, 1, warnings[0].Slot)

	// Copies do not share value maps.
	items[0].Values["line1"] = content.String("changed")
	assert.Equal(t, content.String("Hello"), items[1].Values["line1"])
}

func TestToItemsExplicitTemplateAndSlot(t *testing.T) {
	tbl := read(t, "template_id,slot_index,sku\nplaque,4,ST-1\n", ReadOptions{})
	items, _, err := ToItems(tbl, OrderOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "plaque", items[0].TemplateID)
	require.NotNil(t, items[0].SlotIndex)
	assert.Equal(t, 4, *items[0].SlotIndex)
}

func TestToItemsBadQuantity(t *testing.T) {
	for _, q := range []string{"0", "-1", "1.5", "many", "1001"} {
		tbl := read(t, "quantity\n"+q+"\n", ReadOptions{})
		_, _, err := ToItems(tbl, OrderOptions{})
		require.Error(t, err, q)
		assert.Equal(t, "rows[0].quantity", errors.GetField(err))
	}
	tbl := read(t, "quantity\n3.0\n", ReadOptions{})
	items, _, err := ToItems(tbl, OrderOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

const orderExport = `{
  "orders": [
    {"order_id": 1001, "lines": [
      {"sku": "ST-1", "qty": 2, "custom": {"name": "Rex", "photo": {"file_url": "rex.jpg", "scale": 1.5}}},
      {"sku": "??", "qty": 1, "custom": {"name": "Tom"}}
    ]},
    {"order_id": 1002, "lines": [
      {"template_id": "plaque", "custom": {"name": 42}}
    ]}
  ]
}`

func TestParseJSONOrders(t *testing.T) {
	skus := SKUMap{}
	skus.Add(SKUMeta{SKU: "ST-1", TemplateID: "stake"})

	items, warnings, err := ParseJSONOrders([]byte(orderExport), JSONMapping{
		Items:      "$.orders[*].lines[*]",
		SKU:        "$.sku",
		TemplateID: "$.template_id",
		Quantity:   "$.qty",
		Fields: map[string]string{
			"line1": "$.custom.name",
			"photo": "$.custom.photo",
		},
	}, OrderOptions{SKUs: skus, DefaultTemplate: "fallback"})
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "stake", items[0].TemplateID)
	assert.Equal(t, content.String("Rex"), items[0].Values["line1"])
	require.NotNil(t, items[0].Values["photo"].Photo)
	assert.Equal(t, "rex.jpg", items[0].Values["photo"].Photo.FileURL)
	assert.Equal(t, 1.5, items[0].Values["photo"].Photo.Scale)

	assert.Equal(t, "fallback", items[2].TemplateID)
	assert.Equal(t, "plaque", items[3].TemplateID)
	assert.Equal(t, content.String("42"), items[3].Values["line1"])

	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].Slot)
}

func TestParseJSONOrdersErrors(t *testing.T) {
	_, _, err := ParseJSONOrders([]byte(`{}`), JSONMapping{}, OrderOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, _, err = ParseJSONOrders([]byte(`{}`), JSONMapping{Items: "$.a["}, OrderOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, _, err = ParseJSONOrders([]byte(`{not json`), JSONMapping{Items: "$.x"}, OrderOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSchema))
}
