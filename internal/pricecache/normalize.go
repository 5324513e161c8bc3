package pricecache

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldDiacritics strips accents so that "lacticínios" matches "lacticinios".
// Portuguese-specific cedilla mapping first, then general NFD stripping of
// combining marks.
func FoldDiacritics(s string) string {
	replacer := strings.NewReplacer(
		"ç", "c", "Ç", "C",
	)
	s = replacer.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// foldKey lowercases, trims and folds a string for accent-insensitive
// matching in search.
func foldKey(s string) string {
	return FoldDiacritics(NormalizeKey(s))
}
