package utils

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

const (
	MatchCodeLength = 6
	matchCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var folder = cases.Fold()

// GenerateID returns a random code of n characters from an unambiguous alphabet.
func GenerateID(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = matchCodeChars[rand.IntN(len(matchCodeChars))]
	}
	return string(b)
}

func GenerateMatchCode() string {
	return GenerateID(MatchCodeLength)
}

// NormalizeGuess folds case and collapses whitespace so that guesses compare
// independently of casing in either language.
func NormalizeGuess(s string) string {
	return folder.String(strings.Join(strings.Fields(s), " "))
}

// GuessMatches reports whether guess names either variant of the word.
func GuessMatches(guess string, variants ...string) bool {
	g := NormalizeGuess(guess)
	if g == "" {
		return false
	}
	for _, v := range variants {
		if n := NormalizeGuess(v); n != "" && n == g {
			return true
		}
	}
	return false
}

func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
