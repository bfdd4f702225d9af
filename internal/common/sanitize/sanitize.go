// Package sanitize normalizes user-entered text before it is
// validated and stored.
package sanitize

import "strings"

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Input trims, escapes HTML-significant characters and strips control
// characters (newlines and tabs survive). maxLength of 0 means no cap.
func Input(input string, maxLength int) string {
	sanitized := strings.TrimSpace(input)
	sanitized = htmlEscaper.Replace(sanitized)

	var b strings.Builder
	b.Grow(len(sanitized))
	for _, r := range sanitized {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	sanitized = b.String()

	if maxLength > 0 && len(sanitized) > maxLength {
		sanitized = sanitized[:maxLength]
	}
	return sanitized
}

// RecipientName sanitizes a display name.
func RecipientName(name string) string {
	return Input(name, 0)
}

// Message only trims; message bodies go into deep links, not HTML.
func Message(message string) string {
	return strings.TrimSpace(message)
}

// PhoneNumber strips whitespace from a phone number.
func PhoneNumber(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

// Username lowercases and trims a platform username.
func Username(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
