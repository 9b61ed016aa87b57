package server

import (
	"context"
	"net/http"
	"strings"

	"mytodo/internal/storage"
)

type userKey struct{}
type tokenKey struct{}

// UserResolver resolves a bearer token to the user it was issued to.
type UserResolver interface {
	SessionUser(ctx context.Context, token string) (storage.User, error)
}

// UserFromContext returns the authenticated user, if present.
func UserFromContext(ctx context.Context) (storage.User, bool) {
	u, ok := ctx.Value(userKey{}).(storage.User)
	return u, ok
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			user, err := resolver.SessionUser(r.Context(), token)
			if err != nil || user.ID == "" {
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, user)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
