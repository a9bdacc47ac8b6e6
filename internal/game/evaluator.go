package game

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeGuess lowercases, trims, and strips diacritics so that "  Árbol "
// compares equal to "arbol".
func NormalizeGuess(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	return s
}

// MatchGuess reports whether a guess hits the target word. Comparison is case-
// and diacritic-insensitive and whitespace-trimmed, but otherwise exact: no
// partial or fuzzy matching.
func MatchGuess(guess, target string) bool {
	if target == "" {
		return false
	}
	return NormalizeGuess(guess) == NormalizeGuess(target)
}
