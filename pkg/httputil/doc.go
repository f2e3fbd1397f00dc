// Package httputil provides the JSON envelope, request parsing helpers and the
// generic HTTP middleware shared by every endpoint.
//
// # Response Envelope
//
// Every body carries a status ("success", "failed" or "error") and a message:
//
//	httputil.WriteSuccess(w, httputil.Response{Message: "User updated successfully", Data: user})
//	httputil.WriteFailed(w, http.StatusNotFound, "User not found")
//	httputil.WriteValidationFailed(w, "Invalid input", fieldErrors)
//	httputil.WriteInternalError(w) // never leaks the cause
//
// # Request Parsing
//
//	var req RegisterRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RecoveryMiddleware(logger),
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.SecurityHeadersMiddleware,
//		httputil.CORSMiddleware(cfg.Server.AllowedOrigins),
//		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Session and role middleware
package httputil
