// Package password provides the bcrypt-backed credential hasher.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"account_backend/internal/feature/account/usecase"
)

// BcryptHasher hashes and verifies passwords with bcrypt.
// The encoded hash carries the algorithm version, cost and salt, so nothing else needs storing.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash generates a fresh salt and returns the encoded bcrypt hash.
// Passwords over bcrypt's 72-byte input limit fail with usecase.ErrPasswordTooLong.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("failed to hash password: %w", usecase.ErrPasswordTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash.
// Malformed hashes report false.
func (h *BcryptHasher) Verify(password, hash string) bool {
	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
