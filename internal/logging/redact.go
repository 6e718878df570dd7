package logging

import (
	"regexp"
	"strings"
)

// Patterns for personal data that must not land in logs. Chat bodies can
// carry contact details and prescription numbers typed by customers.
var piiPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),

	// Phone numbers, international or local, with common separators
	regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`),
}

// RedactedValue is the replacement for redacted content.
const RedactedValue = "[REDACTED]"

// previewLimit caps how much of a message body reaches debug logs.
const previewLimit = 48

// Redact replaces personal data in a string.
func Redact(s string) string {
	result := s
	for _, pattern := range piiPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// Preview returns a redacted, truncated form of a message body suitable
// for debug logging.
func Preview(body string) string {
	redacted := Redact(strings.TrimSpace(body))
	runes := []rune(redacted)
	if len(runes) <= previewLimit {
		return redacted
	}
	return string(runes[:previewLimit]) + "…"
}
