package decode

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/bedforge/pkg/errors"
)

func TestObjectReaders(t *testing.T) {
	o := Object{Path: "part", M: map[string]any{
		"w":     json.Number("12.5"),
		"n":     int64(3),
		"frac":  2.5,
		"s":     "x",
		"b":     true,
		"null":  nil,
		"list":  []any{"a", "b"},
		"child": map[string]any{"k": 1},
	}}

	if f, err := o.Float("w"); err != nil || f != 12.5 {
		t.Errorf("Float(w) = %v, %v", f, err)
	}
	if n, err := o.Int("n"); err != nil || n != 3 {
		t.Errorf("Int(n) = %v, %v", n, err)
	}
	if _, err := o.Int("frac"); !errors.Is(err, errors.ErrCodeInvalidSchema) {
		t.Errorf("Int(frac) err = %v", err)
	}
	if v, err := o.OptFloat("null", 7); err != nil || v != 7 {
		t.Errorf("OptFloat(null) = %v, %v", v, err)
	}
	if v, err := o.OptBool("missing", true); err != nil || !v {
		t.Errorf("OptBool(missing) = %v, %v", v, err)
	}
	if l, err := o.OptStrings("list"); err != nil || len(l) != 2 {
		t.Errorf("OptStrings(list) = %v, %v", l, err)
	}
	c, err := o.Object("child")
	if err != nil || c.Path != "part.child" {
		t.Fatalf("Object(child) = %+v, %v", c, err)
	}
	if n, _ := c.Int("k"); n != 1 {
		t.Errorf("child.k = %d", n)
	}
}

func TestObjectErrorsCarryPath(t *testing.T) {
	o := Object{Path: "part.elements[2]", M: map[string]any{"font_size_pt": "big"}}

	_, err := o.Float("font_size_pt")
	if got := errors.GetField(err); got != "part.elements[2].font_size_pt" {
		t.Errorf("field = %q", got)
	}
	_, err = o.String("id")
	if got := errors.GetField(err); got != "part.elements[2].id" {
		t.Errorf("field = %q", got)
	}
}

func TestDocumentFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"json", FormatJSON, `{"a": 1, "l": [{"x": 2}]}`},
		{"yaml", FormatYAML, "a: 1\nl:\n  - x: 2\n"},
		{"toml", FormatTOML, "a = 1\n[[l]]\nx = 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Document([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Document: %v", err)
			}
			root := Root(doc)
			if n, err := root.Int("a"); err != nil || n != 1 {
				t.Errorf("a = %v, %v", n, err)
			}
			l, err := root.List("l")
			if err != nil || len(l) != 1 {
				t.Fatalf("l = %v, %v", l, err)
			}
			item, err := root.Item("l", 0, l[0])
			if err != nil {
				t.Fatalf("Item: %v", err)
			}
			if n, _ := item.Int("x"); n != 2 {
				t.Errorf("l[0].x = %d", n)
			}
		})
	}
}

func TestDocumentInvalid(t *testing.T) {
	if _, err := Document([]byte("{"), FormatJSON); !errors.Is(err, errors.ErrCodeInvalidSchema) {
		t.Errorf("err = %v", err)
	}
	if _, err := Document([]byte("null"), FormatJSON); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"t.json": FormatJSON, "t.YAML": FormatYAML, "t.yml": FormatYAML, "t.toml": FormatTOML, "t": FormatJSON,
	} {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}
