package geom

import "strings"

// SplitLines splits s on explicit line breaks. CRLF and lone CR are treated as LF.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// Baselines returns n baseline positions starting at first and spaced by lineHeight.
func Baselines(n int, first, lineHeight float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = first + float64(i)*lineHeight
	}
	return out
}
