package utils

import (
	"math/rand"
	"strings"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateID returns a short random identifier, used for connection and room ids.
func GenerateID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = idCharset[rand.Intn(len(idCharset))]
	}
	return string(b)
}

// MaskWord hides every letter of the secret word behind an underscore while
// preserving spaces and hyphens, e.g. "ice cream" -> "_ _ _   _ _ _ _ _".
func MaskWord(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(word)
	masked := make([]string, 0, len(runes))
	for _, r := range runes {
		switch r {
		case ' ', '-':
			masked = append(masked, string(r))
		default:
			masked = append(masked, "_")
		}
	}
	return strings.Join(masked, " ")
}

// WordLength counts the maskable characters of a word (letters only).
func WordLength(word string) int {
	n := 0
	for _, r := range word {
		if r != ' ' && r != '-' {
			n++
		}
	}
	return n
}
