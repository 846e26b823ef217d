// Package jwtmw issues and verifies signed bearer tokens and resolves the
// request identity from them.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiration is the token lifetime used when none is configured (one year).
const DefaultExpiration = 31556926 * time.Second

var (
	// ErrTokenInvalid is returned for malformed tokens, bad signatures and unexpected algorithms.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when the token's exp claim has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSecret is returned by NewGenerator when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

// Claims is the token payload: the user id and display name plus the registered claims.
type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Generator signs and verifies HS256 tokens with a server-held secret.
type Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a Generator.
// An empty secret is a configuration error; a non-positive expiration falls back to DefaultExpiration.
func NewGenerator(secret string, expiration time.Duration) (*Generator, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}, nil
}

// GenerateToken issues a token for the given user with the configured expiration.
func (g *Generator) GenerateToken(userID, name string) (string, error) {
	return g.Issue(Claims{UserID: userID, Name: name}, g.expiration)
}

// Issue signs claims with iat set to now and exp set to now+ttl.
func (g *Generator) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := g.now()
	claims.Subject = claims.UserID
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns its claims.
// It returns ErrTokenExpired for lapsed tokens and ErrTokenInvalid for everything else.
func (g *Generator) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return g.secret, nil
		},
		// Only HMAC-SHA256 is accepted; this also rejects alg=none.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
