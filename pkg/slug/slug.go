package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
)

// Make derives a URL-safe slug from a name: lowercased, diacritics stripped,
// whitespace collapsed to hyphens, everything outside [a-z0-9-] dropped.
func Make(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))

	// Decompose accented characters and drop the combining marks, so
	// "Anillo Ónix" becomes "anillo-onix".
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = whitespace.ReplaceAllString(s, "-")
	return disallowed.ReplaceAllString(s, "")
}
