package errors

import (
	"strconv"
	"strings"
)

// Path joins field names and list indices into a dotted field path.
// Integers are rendered as list indices:
//
//	Path("part", "elements", 2, "font_size_pt") == "part.elements[2].font_size_pt"
func Path(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			if v == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}
