package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/session"
	"shoplist/internal/pkg/token"
)

// contextKey is an unexported type so the user key cannot collide with
// context keys from other packages.
type contextKey int

const userKey contextKey = iota

// UserLoader is the slice of the user repository the auth middleware needs.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// TokenValidator is the slice of the token service the API middleware needs.
type TokenValidator interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// CurrentUser extracts the authenticated user attached by one of the auth
// middlewares.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}

// WithUser returns a copy of ctx carrying the authenticated user. Exported
// for handler tests.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// SessionAuth guards the browser surface. An unauthenticated request is
// redirected to the login page with a "next" parameter so the user lands
// back on the page they asked for; this is distinct from the hard 403 the
// manager guard produces for authenticated-but-unauthorized callers.
func SessionAuth(sessions *session.Manager, users UserLoader, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := sessions.UserID(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil || !user.IsActive {
				// Stale session: the account vanished or was deactivated.
				sessions.SignOut(w, r)
				redirectToLogin(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login/?next="+url.QueryEscape(next), http.StatusFound)
}

// TokenAuth guards the JSON API surface with bearer JWTs. The user record
// is reloaded so role changes and deactivations take effect immediately
// instead of at token expiry.
func TokenAuth(tokens TokenValidator, users UserLoader, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, apperror.NewUnauthorizedError("missing or malformed authorization header"))
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, apperror.NewUnauthorizedError("invalid or expired token"))
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil || !user.IsActive {
				writeJSONError(w, apperror.NewUnauthorizedError("unknown or inactive account"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireManager rejects authenticated callers whose role is outside the
// manager set. deny writes the 403 response in the surface's own format.
func RequireManager(managers domain.RoleSet, deny http.HandlerFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				// An auth middleware must run first on any guarded route.
				deny(w, r)
				return
			}
			if !managers.CanManage(user) {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DenyJSON writes a 403 in the API error envelope.
func DenyJSON(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, apperror.NewForbiddenError("this action requires a manager role"))
}

// DenyPlain writes a bare 403 for the browser surface.
func DenyPlain(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "403 Forbidden: this action requires a manager role", http.StatusForbidden)
}

func writeJSONError(w http.ResponseWriter, err apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     err.HTTPStatus(),
		Category: err.Category(),
		Message:  err.Error(),
	})
}
