package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// ContextUser is the gin context key holding the resolved *entity.User.
const ContextUser = "currentUser"

// TokenVerifier validates a raw token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// UserFinder resolves the token subject to a stored user.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type userContextKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user attached by Authenticate, if any.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*entity.User)
	return user, ok && user != nil
}

// CurrentUser returns the user attached to the gin context by Authenticate, if any.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}

// Authenticate returns a Gin middleware that resolves the request identity.
//
// It never rejects a request for authentication reasons: a missing, invalid or
// expired token, or a token whose user no longer exists, leaves the request
// anonymous. Handlers that need an identity check CurrentUser themselves.
// Only a store failure while resolving the user aborts the request with 500.
func Authenticate(verifier TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get token from Authorization header
		tokenStr := extractToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			c.Next()
			return
		}

		// 2. Verify signature and expiry
		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			slog.Debug("token rejected, continuing anonymously", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		// 3. The subject must still exist
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				c.Next()
				return
			}
			slog.Error("failed to resolve token subject", "error", err, "user_id", claims.UserID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}

		// 4. Attach identity and pass control to the next handler
		c.Set(ContextUser, user)
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// extractToken accepts both the raw token and the "Bearer <token>" form.
func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
