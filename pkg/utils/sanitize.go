package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// SanitizeIdentifier trims an identifier such as a device or network id and drops
// control characters.
func SanitizeIdentifier(input string) string {
	return removeControlChars(strings.TrimSpace(input))
}

// SanitizeUsername lowercases and trims a login name.
func SanitizeUsername(username string) string {
	return strings.ToLower(SanitizeIdentifier(username))
}

// SanitizeEmail sanitizes email input
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	email = stripHTML(email)

	return removeControlChars(email)
}

// SanitizeText sanitizes free text such as names and descriptions
func SanitizeText(input string) string {
	escaped := html.EscapeString(strings.TrimSpace(input))

	var result strings.Builder
	for _, r := range escaped {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeOptionalText applies SanitizeText to a non-nil pointer.
func SanitizeOptionalText(input *string) *string {
	if input == nil {
		return nil
	}
	s := SanitizeText(*input)
	return &s
}

func stripHTML(input string) string {
	return htmlTag.ReplaceAllString(input, "")
}

func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
