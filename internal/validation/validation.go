// Package validation holds the pure input checks shared by the services.
// Nothing here touches storage.
package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MaxTodoText       = 500
	MaxThreadTitle    = 200
	MaxMessageContent = 10000

	MinPassword = 8
	// MaxPassword is in bytes; bcrypt rejects longer input.
	MaxPassword = 72
	MaxName     = 200
)

// SanitizeText strips leading and trailing whitespace. Nothing else is changed.
func SanitizeText(text string) string {
	return strings.TrimSpace(text)
}

func IsValidTodoText(text string) bool {
	return trimmedLenWithin(text, MaxTodoText)
}

func IsValidThreadTitle(title string) bool {
	return trimmedLenWithin(title, MaxThreadTitle)
}

func IsValidMessageContent(content string) bool {
	return trimmedLenWithin(content, MaxMessageContent)
}

func IsValidName(name string) bool {
	return trimmedLenWithin(name, MaxName)
}

// IsValidEmail accepts a bare address; display-name forms are rejected.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// IsValidPassword requires at least MinPassword characters and at most
// MaxPassword bytes.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPassword && len(password) <= MaxPassword
}

func trimmedLenWithin(s string, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 1 && n <= max
}
