// Package contextkeys provides centralized context key definitions
//
// All context keys used across the application are defined here so key usage
// stays discoverable and typed.
//
// USAGE PATTERN:
//
//	import "github.com/platinummonkey/shopadmin/pkg/contextkeys"
//	ctx = contextkeys.WithAuth(ctx, session)
//	session, _ := ctx.Value(contextkeys.AuthKey).(*auth.Session)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthKey contains *auth.Session
	// Set by: middleware.SessionMiddleware (pkg/middleware/auth.go)
	// Required by: protected user endpoints, role guard
	AuthKey Key = "auth_session"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger
	RequestIDKey Key = "request_id"

	// UserIDKey contains the authenticated user ID string
	// Set by: middleware.SessionMiddleware after user resolution
	// Used by: Logger
	UserIDKey Key = "user_id"

	// LoggerKey contains *observability.Logger
	// Set by: httputil.LoggingMiddleware
	// Used by: Handlers that need structured logging with request context
	LoggerKey Key = "logger"
)

// WithAuth adds the authenticated session to the context
func WithAuth(ctx context.Context, session interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, session)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithLogger adds logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}
