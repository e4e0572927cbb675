package middleware

import (
	"context"
	"net/http"

	"github.com/libroteca/backend/internal/models"
)

// SessionCookieName is the cookie holding the opaque session token
const SessionCookieName = "session_token"

const sessionKey contextKey = "session"

// SessionStore resolves an opaque session token to the caller's identity
type SessionStore interface {
	// Method GetInfoByToken retrieves the session view model for a token.
	//
	// "token" parameter is the opaque session token from the cookie.
	//
	// If the token is unknown or the session has expired, the error will be returned together with "nil" value.
	GetInfoByToken(ctx context.Context, token string) (*models.SessionInfo, error)
}

// SessionMiddleware resolves the session cookie to a SessionInfo and adds it
// to the request context. Requests without a valid session proceed as anonymous.
func SessionMiddleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := models.SessionInfo{}

			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if resolved, err := store.GetInfoByToken(r.Context(), cookie.Value); err == nil {
					info = *resolved
				}
			}

			ctx := context.WithValue(r.Context(), sessionKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the session view model from context.
// Returns an anonymous SessionInfo when none is set.
func GetSession(ctx context.Context) models.SessionInfo {
	if info, ok := ctx.Value(sessionKey).(models.SessionInfo); ok {
		return info
	}
	return models.SessionInfo{}
}

// RequireAdmin rejects requests whose session does not carry the administrator
// role. Must be mounted after SessionMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := GetSession(r.Context())

		if !info.LoggedIn() {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		if !info.IsAdmin {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
