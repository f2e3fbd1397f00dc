// Package api provides the HTTP surface of the shop admin service.
//
// # Overview
//
// The API is built on gorilla/mux. Every response uses the JSON envelope from
// pkg/httputil with a status of "success", "failed" or "error" and a
// human-readable message.
//
// # Routes
//
// Public:
//
//	POST /api/users/register   create an account
//	POST /api/users/login      verify credentials, set the SessionID cookie
//	POST /api/users/logout     revoke the presented token, clear the cookie
//
// Session required:
//
//	GET    /api/users/profile  the authenticated user
//	GET    /api/users          all users (admin only)
//	GET    /api/users/{id}     one user
//	PUT    /api/users/{id}     partial update
//	DELETE /api/users/{id}     hard delete
//
// Operational endpoints /healthz, /readyz and /metrics are mounted when the
// corresponding Options are set.
//
// # Sessions
//
// The token is read from the SessionID cookie and then from an
// "Authorization: Bearer" header. The cookie is HttpOnly, SameSite=None and
// Secure unless Options.CookieSecure is false for local development.
//
// # Usage
//
//	server := api.NewServer(svc, api.Options{
//		Logger:       logger,
//		Metrics:      metrics,
//		Registry:     registry,
//		LoginLimiter: limiter,
//		CookieSecure: true,
//	})
//	http.ListenAndServe(":8080", server)
package api
