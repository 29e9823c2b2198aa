// Package validation checks user-supplied input at the application
// boundary. The store itself treats invalid references as silent no-ops;
// these checks exist so callers can surface an inline message instead.
package validation

import (
	"fmt"
	"strings"
)

// Error represents a validation error on a single field.
type Error struct {
	Field   string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DeckName validates and normalizes a deck name. The returned name is
// trimmed of surrounding whitespace.
func DeckName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Error{Field: "name", Message: "deck name is required"}
	}
	if len(name) > 100 {
		return "", Error{Field: "name", Message: "deck name must be 100 characters or less"}
	}
	return name, nil
}

// SyncToken validates and normalizes a user-supplied sync token.
func SyncToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", Error{Field: "syncId", Message: "sync id is required"}
	}
	if strings.ContainsAny(token, " \t\n") {
		return "", Error{Field: "syncId", Message: "sync id must not contain whitespace"}
	}
	return token, nil
}
