package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/marquee/internal/models"
	pkghttp "github.com/BradenHooton/marquee/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the authenticated user in context
	UserContextKey contextKey = "user"
)

// UserLookup resolves the user named by a token's claims
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionMiddleware validates the bearer access token, loads the user it names
// and injects the user into the request context.
func SessionMiddleware(tm *TokenManager, users UserLookup, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractBearerToken(r)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "Unauthorized - No Token Provided")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized - Invalid Token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteNotFound(w, "User not found")
					return
				}
				logger.Error("session user lookup failed", slog.String("user_id", claims.UserID), slog.Any("error", err))
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// ExtractBearerToken returns the token from "Authorization: Bearer <token>",
// or "" when the header is absent or malformed
func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
