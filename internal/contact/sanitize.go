package contact

import (
	"regexp"
	"strings"
)

// MaxEmailLength is the RFC 5321 cap on a full address.
const MaxEmailLength = 254

// Strict email grammar: allows common mailbox characters, rejects anything
// HTML-significant. Deliberately tighter than RFC 5322 so that header-injection
// and markup payloads shaped like addresses never validate.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces the five HTML-significant characters with entities.
// All other characters pass through unchanged.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// hasControlChars reports whether s contains an ASCII control character,
// including CR/LF (mail header injection) and DEL.
func hasControlChars(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

// truncate limits s to max characters, counting runes rather than bytes so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// IsValidEmail validates an address against the strict grammar: at most 254
// characters, no control characters, exactly one @ with a dotted domain.
func IsValidEmail(email string) bool {
	if len(email) > MaxEmailLength {
		return false
	}
	if hasControlChars(email) {
		return false
	}
	return emailPattern.MatchString(email)
}

// SanitizeInput trims, truncates to max characters, then HTML-escapes.
// Truncation runs before escaping so the length bound applies to raw content,
// not entity-expanded output.
func SanitizeInput(s string, max int) string {
	return EscapeHTML(truncate(strings.TrimSpace(s), max))
}

// SanitizeEmail prepares an address for use as a reply-to header: trim,
// truncate to 254 characters, strip control characters. It does not escape
// HTML because the value is never rendered raw, but stripping CR/LF keeps it
// from forging additional mail headers.
func SanitizeEmail(email string) string {
	trimmed := truncate(strings.TrimSpace(email), MaxEmailLength)
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
