package geom

import (
	"math"
	"strconv"
)

// precision is the rounding step applied to every emitted number (0.1 µm).
const precision = 1e4

// Num formats v for output: rounded to 1e-4, shortest representation, never "-0".
func Num(v float64) string {
	r := math.Round(v*precision) / precision
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Round rounds v to the output precision.
func Round(v float64) float64 {
	r := math.Round(v*precision) / precision
	if r == 0 {
		return 0
	}
	return r
}
