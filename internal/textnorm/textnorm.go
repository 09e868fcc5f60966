// Package textnorm folds free text typed into catalog spreadsheets into
// comparable keys and URL slugs.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// đ has no canonical decomposition, so NFD alone leaves it in place.
var strokeReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// StripDiacritics removes combining marks: "Áo sơ mi" -> "Ao so mi".
func StripDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, strokeReplacer.Replace(s))
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases, strips diacritics, trims and collapses inner whitespace.
func Fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(StripDiacritics(s))), " ")
}

// Slugify converts a name into a lowercase ASCII slug.
func Slugify(name string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range Fold(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !prevDash && b.Len() > 0 {
				b.WriteRune('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
