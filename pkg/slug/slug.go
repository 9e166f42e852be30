// Package slug generates URL- and DNS-safe tenant slugs from restaurant
// names. Diacritics are folded to ASCII, anything else non-alphanumeric
// collapses to single hyphens.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps slugs at a single DNS label.
const MaxLength = 63

// stripDiacritics decomposes unicode and removes combining marks, so
// "Café Zürich" folds to "Cafe Zurich".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts an arbitrary name to a slug: diacritics folded,
// lowercased, non-alphanumeric runs collapsed to single hyphens, and
// trimmed to MaxLength. Returns "" when nothing usable remains.
func Make(name string) string {
	folded, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphen
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}
	return s
}

// MakeUnique appends a short random suffix to reduce collisions between
// tenants with similar names.
func MakeUnique(name string) string {
	base := Make(name)

	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return base
	}
	suffix := hex.EncodeToString(buf)

	if base == "" {
		return suffix
	}
	if len(base)+len(suffix)+1 > MaxLength {
		base = strings.Trim(base[:MaxLength-len(suffix)-1], "-")
	}
	return base + "-" + suffix
}
