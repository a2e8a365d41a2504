package template

import (
	"fmt"
	"slices"

	"github.com/matzehuels/bedforge/pkg/geom"
)

// Regular stake part geometry.
const (
	stakeWidthMM  = 140.0
	stakeHeightMM = 90.0
	// stakeEdgeGap is the gap used for a single row or column.
	stakeEdgeGap = 10.0
)

// RegularStake builds the three-line memorial stake layout: a 140×90mm part
// with a heading, a name line, a multiline message and a full-size border
// graphic supplied per slot. The grid is centred on the bed by spreading the
// free space evenly between and around the parts.
func RegularStake(bedWidthMM, bedHeightMM float64, cols, rows int) *Template {
	gapX, gapY := float64(stakeEdgeGap), float64(stakeEdgeGap)
	if cols > 1 {
		gapX = (bedWidthMM - float64(cols)*stakeWidthMM) / float64(cols+1)
	}
	if rows > 1 {
		gapY = (bedHeightMM - float64(rows)*stakeHeightMM) / float64(rows+1)
	}

	line := func(id string, y, h, size float64, multiline bool) Element {
		e := Text(id, geom.Box{X: 10, Y: y, W: 120, H: h}, size)
		e.Text.FontFamily = "Georgia"
		e.Text.Multiline = multiline
		return e
	}
	border := Graphic("graphic", geom.Box{W: stakeWidthMM, H: stakeHeightMM}, "")
	border.Editable = false

	return &Template{
		Bed: Bed{
			WidthMM:      bedWidthMM,
			HeightMM:     bedHeightMM,
			Margin:       Margin{Left: gapX, Top: gapY},
			OriginMarker: true,
		},
		Part: Part{
			WidthMM:  stakeWidthMM,
			HeightMM: stakeHeightMM,
			Elements: []Element{
				line("line1", 20, 10, 14, false),
				line("line2", 35, 10, 12, false),
				line("line3", 50, 30, 10, true),
				border,
			},
		},
		Tiling: Tiling{Rows: rows, Cols: cols, GapXMM: gapX, GapYMM: gapY},
	}
}

var presets = map[string]func() *Template{
	"regular-stake-3x3": func() *Template { return RegularStake(480, 330, 3, 3) },
	"regular-stake-4x3": func() *Template { return RegularStake(600, 330, 4, 3) },
	"regular-stake-3x4": func() *Template { return RegularStake(480, 440, 3, 4) },
}

// Preset returns a fresh copy of a named built-in template.
func Preset(name string) (*Template, error) {
	f, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return f(), nil
}

// PresetNames lists the built-in templates in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
