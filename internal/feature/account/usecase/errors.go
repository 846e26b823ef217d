// Package usecase implements the business logic for the account feature.
package usecase

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to register or move to an email that is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("password incorrect")

	// ErrPasswordTooLong is returned by a PasswordHasher whose algorithm cannot take the password.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrUnauthenticated is returned when an identity-gated operation runs without a resolved user.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError collects every field that failed validation.
// Fields maps the JSON field name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

// Error lists the failing fields in a stable order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
