package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a named, PIN-protected balance record. Name is the business
// key: unique, non-empty, and free of whitespace (whitespace delimits
// fields in the wire format).
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PIN       int64     `json:"-"` // opaque credential, exact-equality check only
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidName reports whether name can identify an account.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
