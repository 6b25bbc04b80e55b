package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/swipswaps/marketplace-bulk-editor/internal/auth"
	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
)

type contextKey string

const userKey contextKey = "user"

// BearerAuth returns middleware that validates the Authorization bearer
// token against the auth service and stores the account in the request
// context. A nil service rejects everything with 503, which is the
// offline-mode behavior for account routes.
func BearerAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				jsonError(w, http.StatusServiceUnavailable, "persistence is not configured")
				return
			}

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token, ok := strings.CutPrefix(raw, "Bearer ")
			if !ok || token == "" {
				jsonError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			user, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				slog.Warn("auth: rejected token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				jsonError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated account stored by BearerAuth.
func UserFromContext(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(userKey).(store.User)
	return u, ok
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`+"\n", message)
}
