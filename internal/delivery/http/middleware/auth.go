package middleware

import (
	"net/http"
	"strings"

	"github.com/northernchefs/storefront/internal/auth"
	"github.com/northernchefs/storefront/internal/delivery/http/response"
	"github.com/northernchefs/storefront/internal/pkg/logger"
)

// TokenParser validates bearer tokens
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate attaches the session user of a valid bearer token to the request context.
// Requests without an Authorization header pass through anonymously; the service decides
// whether the operation needs a session.
func Authenticate(tokens TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				log.With("path", r.URL.Path).Debugf("Rejected bearer token: %v", err)
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// RequireSession rejects requests that reached it without a session user,
// before any body is read
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			response.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
