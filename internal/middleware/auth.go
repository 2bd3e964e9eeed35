package middleware

import (
	"net/http"
	"strings"

	"coursecatalog/internal/api/httpx"
	"coursecatalog/internal/authz"
	"coursecatalog/internal/util"

	"github.com/rs/zerolog"
)

// SessionCookie is the cookie the identity provider's frontend SDK sets.
const SessionCookie = "__session"

// AuthMiddleware attaches the caller's Principal when the request carries a
// valid session token. Requests without one, including those with an expired
// or foreign token, continue anonymously; RequirePermission rejects them on
// guarded routes.
func AuthMiddleware(sessions *util.TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := sessionToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := sessions.Verify(tokenString)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Ignoring invalid session token")
				next.ServeHTTP(w, r)
				return
			}
			principal := &authz.Principal{UserID: claims.Subject, Role: claims.PublicMetadata.Role}
			next.ServeHTTP(w, r.WithContext(authz.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequirePermission rejects the request unless the policy grants action to the
// caller. Both failure modes answer 401 with distinct codes.
func RequirePermission(policy authz.Policy, action authz.Action, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := authz.PrincipalFrom(r.Context())
			switch err := policy.Authorize(principal, action); err {
			case nil:
				next.ServeHTTP(w, r)
			case authz.ErrUnauthenticated:
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, "Unauthorized")
			default:
				logger.Info().Str("user_id", principal.UserID).Str("action", string(action)).Msg("Permission denied")
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeForbidden, "Unauthorized: admin role required")
			}
		})
	}
}

func sessionToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), true
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
