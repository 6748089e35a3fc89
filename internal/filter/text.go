package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lower-cases s, strips diacritics and collapses whitespace so that
// "Bengaluru", "BENGALURU " and "Bengalúru" compare equal.
func fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// firstContained returns the first token that appears in text, or "".
func firstContained(text string, tokens []string) string {
	for _, t := range tokens {
		if strings.Contains(text, t) {
			return t
		}
	}
	return ""
}
