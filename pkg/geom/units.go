package geom

const (
	// MMPerInch is the number of millimetres in one inch.
	MMPerInch = 25.4

	// PointsPerInch is the number of typographic points in one inch.
	PointsPerInch = 72.0

	// DefaultLineSpacing is the line-height multiplier applied to the font size.
	DefaultLineSpacing = 1.2
)

// PtToMM converts typographic points to millimetres.
func PtToMM(pt float64) float64 {
	return pt * MMPerInch / PointsPerInch
}

// MMToPt converts millimetres to typographic points.
func MMToPt(mm float64) float64 {
	return mm * PointsPerInch / MMPerInch
}

// LineHeight returns the distance in millimetres between two consecutive
// baselines of text set at fontSizePt. A non-positive spacing falls back to
// DefaultLineSpacing.
func LineHeight(fontSizePt, spacing float64) float64 {
	if spacing <= 0 {
		spacing = DefaultLineSpacing
	}
	return PtToMM(fontSizePt) * spacing
}
