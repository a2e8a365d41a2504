package render

import (
	"bytes"
	"context"
	"reflect"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []Format
		wantErr bool
	}{
		{"", []Format{FormatSVG}, false},
		{"svg", []Format{FormatSVG}, false},
		{"SVG, pdf,png,pdf", []Format{FormatSVG, FormatPDF, FormatPNG}, false},
		{"eps", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormats(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if FormatPDF.Ext() != ".pdf" || FormatPDF.ContentType() != "application/pdf" {
		t.Error("pdf helpers wrong")
	}
	if FormatSVG.ContentType() != "image/svg+xml" {
		t.Error("svg content type wrong")
	}
}

func TestConvertSVGPassthrough(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	out, err := Convert(context.Background(), svg, FormatSVG, 1)
	if err != nil || !bytes.Equal(out, svg) {
		t.Errorf("Convert(svg) = %q, %v", out, err)
	}
}

func TestToPDF(t *testing.T) {
	if !ConverterAvailable() {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg width="10mm" height="10mm" viewBox="0 0 10 10" xmlns="http://www.w3.org/2000/svg"><rect width="5" height="5"/></svg>`)
	pdf, err := ToPDF(context.Background(), svg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output is not a PDF: %.8q", pdf)
	}
}
