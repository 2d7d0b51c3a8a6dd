package directory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a stable document key from a display name: lowercased,
// accents stripped, whitespace collapsed to hyphens, everything else dropped.
func Slugify(name string) string {
	flat, _, err := transform.String(deaccent, strings.ToLower(name))
	if err != nil {
		flat = strings.ToLower(name)
	}

	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range flat {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
