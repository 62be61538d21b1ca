package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeString trims, strips markup tags and control characters. Values are
// stored raw; output escaping belongs to the encoder.
func SanitizeString(input string) string {
	stripped := htmlTagPattern.ReplaceAllString(strings.TrimSpace(input), "")
	return strings.TrimSpace(removeControlChars(stripped))
}

// SanitizeEmail lower-cases, trims and strips markup
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	email = htmlTagPattern.ReplaceAllString(email, "")
	return removeControlChars(email)
}

// SanitizePhone keeps digits and the usual separators only
func SanitizePhone(phone string) string {
	phone = htmlTagPattern.ReplaceAllString(strings.TrimSpace(phone), "")

	var result strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) || r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeText is SanitizeString for multi-line free text.
func SanitizeText(input string) string {
	stripped := htmlTagPattern.ReplaceAllString(strings.TrimSpace(input), "")

	var result strings.Builder
	for _, r := range stripped {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SanitizeOptional applies fn to a non-nil pointer value in place.
func SanitizeOptional(value *string, fn func(string) string) *string {
	if value == nil {
		return nil
	}
	sanitized := fn(*value)
	return &sanitized
}

func removeControlChars(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
