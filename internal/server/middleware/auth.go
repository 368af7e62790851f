// Package middleware provides HTTP middleware for sessions and request correlation.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// userIDKey is the context key for storing the authenticated user ID.
const userIDKey ContextKey = "userID"

// SessionCookieName is the cookie that carries the session token for browser clients.
const SessionCookieName = "session"

// TokenValidator is an interface for validating session tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter is an interface for extracting user ID from token claims.
type UserIDGetter interface {
	GetUserID() int64
}

// Session attaches the user of a valid token to the request context. Requests without a
// token, or with an invalid one, pass through anonymously.
func Session(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := TokenFromRequest(r); token != "" {
				if claims, err := v.ValidateToken(token); err == nil {
					r = r.WithContext(WithUserID(r.Context(), claims.GetUserID()))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware rejects requests that carry no valid token.
func AuthMiddleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Session(v)(RequireUser(next))
	}
}

// RequireUser rejects requests whose context has no user. It expects Session to run first.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := GetUserID(r); err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest returns the bearer token of the Authorization header or, failing that, the
// session cookie. It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Handle case-insensitive "Bearer" prefix
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (int64, error) {
	userID, ok := r.Context().Value(userIDKey).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in request context")
	}
	return userID, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
