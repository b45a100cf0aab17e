package util

import (
	"crypto/rand"
	"strings"
	"unicode"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"

// MaxSlugLength caps slugs derived from free-text goals.
const MaxSlugLength = 48

// GenerateShortID returns a 6-character lowercase alphanumeric string using
// cryptographic randomness.
func GenerateShortID() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = alphanumeric[int(bytes[i])%len(alphanumeric)]
	}

	return string(bytes), nil
}

// ToKebabCase converts a string to kebab-case.
// It lowercases the string, replaces whitespace, underscores and slashes
// with hyphens, drops other punctuation, collapses repeated hyphens and
// trims hyphens at either end.
func ToKebabCase(s string) string {
	var result strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(unicode.ToLower(r))
		} else if unicode.IsSpace(r) || r == '_' || r == '-' || r == '/' {
			result.WriteRune('-')
		}
	}

	str := result.String()
	for strings.Contains(str, "--") {
		str = strings.ReplaceAll(str, "--", "-")
	}

	return strings.Trim(str, "-")
}

// Slug returns ToKebabCase(s) cut to at most MaxSlugLength runes, ending on
// a word boundary when one is available.
func Slug(s string) string {
	kebab := ToKebabCase(s)
	runes := []rune(kebab)
	if len(runes) <= MaxSlugLength {
		return kebab
	}
	cut := string(runes[:MaxSlugLength])
	if i := strings.LastIndex(cut, "-"); i > 0 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}
