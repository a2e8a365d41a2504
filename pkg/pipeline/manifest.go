package pipeline

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/matzehuels/bedforge/pkg/alloc"
	"github.com/matzehuels/bedforge/pkg/content"
	"github.com/matzehuels/bedforge/pkg/geom"
	"github.com/matzehuels/bedforge/pkg/template"
)

// ManifestHeader is the column order of the placement manifest.
var ManifestHeader = []string{
	"job_id", "bed_index", "position_index", "item_index", "order_ref",
	"template_id", "slot", "row", "col", "x_mm", "y_mm", "w_mm", "h_mm",
}

// BuildManifest writes one CSV row per placed item, in bed order then slot
// order. Positions are the tile's top-left corner in bed millimetres.
func BuildManifest(jobID string, tpl *template.Template, items []content.Item, plan *alloc.Plan) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ManifestHeader); err != nil {
		return nil, err
	}

	width := geom.Num(tpl.Part.WidthMM)
	height := geom.Num(tpl.Part.HeightMM)
	for _, bed := range plan.Beds {
		for pos, p := range bed.Placements {
			origin := tpl.TileOrigin(p.Row, p.Col)
			if p.Origin != nil {
				origin = *p.Origin
			}
			var ref, tplID string
			if p.Item >= 0 && p.Item < len(items) {
				ref = items[p.Item].OrderRef
				tplID = items[p.Item].TemplateID
			}
			row := []string{
				jobID,
				strconv.Itoa(bed.Index),
				strconv.Itoa(pos),
				strconv.Itoa(p.Item),
				ref,
				tplID,
				strconv.Itoa(p.Slot),
				strconv.Itoa(p.Row),
				strconv.Itoa(p.Col),
				geom.Num(origin.X),
				geom.Num(origin.Y),
				width,
				height,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
