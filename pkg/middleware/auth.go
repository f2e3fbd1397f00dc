package middleware

import (
	"context"
	"net/http"

	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/contextkeys"
	"github.com/platinummonkey/shopadmin/pkg/httputil"
	"github.com/platinummonkey/shopadmin/pkg/observability"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "SessionID"

// Authenticator resolves a session token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Session, error)
}

// SessionMiddleware requires a valid, non-revoked session on every request
type SessionMiddleware struct {
	authenticator Authenticator
	logger        *observability.Logger
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(authenticator Authenticator, logger *observability.Logger) *SessionMiddleware {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &SessionMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// Handler wraps an HTTP handler with session verification. On success the
// *auth.Session and user id are attached to the request context.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.authenticator.Authenticate(r.Context(), TokenFromRequest(r))
		if err != nil {
			if auth.KindOf(err) == auth.KindAuthentication {
				observability.FromContext(r.Context(), m.logger).WithError(err).Debug("Session rejected")
			}
			WriteError(w, r, m.logger, err)
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), session)
		ctx = contextkeys.WithUserID(ctx, session.User.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest returns the session token from the SessionID cookie,
// falling back to an Authorization bearer header
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return httputil.BearerToken(r)
}

// GetSession extracts the session attached by SessionMiddleware
func GetSession(r *http.Request) *auth.Session {
	session, _ := r.Context().Value(contextkeys.AuthKey).(*auth.Session)
	return session
}

// RequireRole rejects sessions whose user holds none of roles. Must run
// after SessionMiddleware.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetSession(r).HasRole(roles...) {
				httputil.WriteFailed(w, StatusFor(auth.ErrForbidden.Kind), auth.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only admin sessions
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(auth.RoleAdmin)(next)
}
