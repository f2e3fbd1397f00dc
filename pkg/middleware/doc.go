// Package middleware provides the session, role and rate limiting middleware
// protecting the user endpoints.
//
// # Session Verification
//
// SessionMiddleware reads the token from the SessionID cookie, or an
// Authorization bearer header, and resolves it through the auth service:
//
//	sessions := middleware.NewSessionMiddleware(authService, logger)
//	protected := router.NewRoute().Subrouter()
//	protected.Use(sessions.Handler)
//
// Every rejection is a 401 JSON body; store failures are a 500. Handlers read
// the attached session with GetSession(r).
//
// # Role Guard
//
//	protected.Handle("/api/users", middleware.RequireAdmin(listHandler))
//
// # Rate Limiting
//
// Login attempts are limited per client IP, in process by default or shared
// through Redis when a Redis URL is configured:
//
//	limiter := middleware.NewRateLimiter(middleware.LoginRateLimitConfig(10, 5))
//	limiter := middleware.NewDistributedRateLimiter(redisClient, cfg, "ratelimit:login")
//
// Redis errors fail open.
package middleware
