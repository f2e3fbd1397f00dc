// Package auth provides account management and session authentication for
// the storefront admin panel.
//
// # Overview
//
// Operators log in with a username and password. A successful login issues a
// signed session token (HS256 JWT, 30 day validity) which the client presents
// on every protected request. Logging out adds the token's hash to a
// blacklist so it can never be used again, even before it expires.
//
// # Key Components
//
// Hasher: bcrypt password hashing with a tunable work factor
//
//	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
//	hash, _ := hasher.Hash("secret123")
//	ok := hasher.Verify("secret123", hash)
//
// TokenCodec: issues and verifies session tokens
//
//	codec := auth.NewTokenCodec([]byte(cfg.Auth.TokenSecret))
//	token, claims, _ := codec.Issue(user.ID)
//	claims, err := codec.Verify(token) // ErrExpiredToken, ErrInvalidSignature, ErrMalformedToken
//
// Service: register, login, logout and per-request authentication
//
//	svc := auth.NewService(userStore, blacklistStore, hasher, codec,
//		auth.WithLogger(logger), auth.WithMetrics(metrics))
//	result, err := svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "secret123"})
//	session, err := svc.Authenticate(ctx, result.Token)
//	err = svc.Logout(ctx, result.Token)
//
// # Login Ordering
//
// Login looks the user up, then checks the account status, then the password.
// An unknown username and a wrong password produce the same
// ErrInvalidCredentials; an inactive account produces ErrAccountInactive.
//
// # Errors
//
// Every user-facing failure is an *Error carrying a Kind (validation,
// authentication, authorization, not found, conflict). Transports map the
// Kind to a status code; see pkg/api.
//
// # Related Packages
//
//   - pkg/storage/postgres: UserStore and BlacklistStore on PostgreSQL
//   - pkg/storage/redisstore: BlacklistStore on Redis with per-key TTL
//   - pkg/storage/memory: in-process stores for development and tests
//   - pkg/middleware: session verification and role guard
package auth
