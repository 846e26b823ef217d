// Package entity defines the domain entities for the account feature.
package entity

import "time"

// User represents a registered account.
// It carries the hashed credential and the bookkeeping timestamps the store maintains.
type User struct {
	// ID is the opaque identifier assigned by the store on creation.
	// It never changes afterwards.
	ID string

	// Name is the display name. Never empty.
	Name string

	// Email is the login identifier. Unique across all users.
	Email string

	// PasswordHash is the bcrypt encoding of the password.
	// The plaintext password is never stored.
	PasswordHash string

	// CreatedAt is the timestamp when the user registered.
	CreatedAt time.Time

	// LastUpdationTime is set on password reset and profile update.
	// nil until the first such change.
	LastUpdationTime *time.Time
}

// Touch records a modification at the given time.
func (u *User) Touch(now time.Time) {
	t := now
	u.LastUpdationTime = &t
}
