package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Format is an output file format.
type Format string

// Output formats.
const (
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormats parses a comma separated format list such as "svg,pdf".
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		switch Format(f) {
		case FormatSVG, FormatPDF, FormatPNG:
		default:
			return nil, fmt.Errorf("unknown format %q (must be svg, pdf or png)", f)
		}
		if !seen[Format(f)] {
			seen[Format(f)] = true
			out = append(out, Format(f))
		}
	}
	if len(out) == 0 {
		return []Format{FormatSVG}, nil
	}
	return out, nil
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	default:
		return "image/svg+xml"
	}
}

// Convert produces the requested format from SVG bytes. SVG is returned as is.
func Convert(ctx context.Context, svg []byte, f Format, pngScale float64) ([]byte, error) {
	switch f {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return ToPDF(ctx, svg)
	case FormatPNG:
		return ToPNG(ctx, svg, pngScale)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
// Scale of 2.0 produces a 2x resolution image.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// ConverterAvailable reports whether rsvg-convert is on the PATH.
func ConverterAvailable() bool {
	_, err := exec.LookPath("rsvg-convert")
	return err == nil
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !ConverterAvailable() {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
