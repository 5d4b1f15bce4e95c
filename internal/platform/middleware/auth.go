package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"vowline/internal/access"
	"vowline/pkg/requestcontext"
)

// SessionCookie is the cookie carrying the access token for browser clients.
// API clients may use an Authorization bearer header instead.
const SessionCookie = "vowline_session"

// SessionResolver turns a bearer token into a fully resolved principal.
// Implemented by the identity service.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (access.Principal, error)
}

// RequireAuth resolves the caller's session and stores the principal in the
// request context. Any resolution failure is a 401; role and scope decisions
// happen later, in the guard.
func RequireAuth(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := BearerToken(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "missing or invalid credentials")
				return
			}

			principal, err := resolver.Resolve(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireRole gates a subtree to specific roles after RequireAuth ran.
// Finer-grained decisions stay in the guard; this only fences whole route
// groups such as /admin.
func RequireRole(roles ...access.Role) func(http.Handler) http.Handler {
	allowed := make(map[access.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := access.PrincipalFrom(r.Context())
			if !ok {
				writeUnauthorized(w, "missing or invalid credentials")
				return
			}
			if _, ok := allowed[principal.Role]; !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","message":"role not permitted"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the raw token from the Authorization header or the
// session cookie.
func BearerToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && after != "" {
		return after
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + msg + `"}`))
}
