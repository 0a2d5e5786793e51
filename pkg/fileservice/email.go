package fileservice

import (
	"net/mail"
	"strings"
)

// NormalizeEmail validates a bare email address and returns its canonical
// form (trimmed, lower-cased). Display-name forms such as
// "Jane <jane@example.com>" are rejected.
func NormalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", &InvalidEmailError{Email: email}
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Name != "" || parsed.Address != trimmed {
		return "", &InvalidEmailError{Email: email}
	}
	return strings.ToLower(parsed.Address), nil
}
