package geom

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML normalises s to NFC and escapes the five XML reserved characters.
// Invalid UTF-8 sequences become U+FFFD and control characters other than
// tab are dropped since XML 1.0 cannot carry them.
func EscapeXML(s string) string {
	s = norm.NFC.String(strings.ToValidUTF8(s, "\uFFFD"))
	if strings.IndexFunc(s, isDisallowed) >= 0 {
		s = strings.Map(func(r rune) rune {
			if isDisallowed(r) {
				return -1
			}
			return r
		}, s)
	}
	return xmlReplacer.Replace(s)
}

func isDisallowed(r rune) bool {
	return r != '\t' && unicode.IsControl(r)
}
