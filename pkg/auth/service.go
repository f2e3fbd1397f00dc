package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/observability"
)

// Service implements the account and session lifecycle
type Service struct {
	users     UserStore
	blacklist BlacklistStore
	hasher    *Hasher
	codec     *TokenCodec
	logger    *observability.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *observability.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables auth event metrics
func WithMetrics(metrics *observability.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithNow overrides the service clock
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the authentication service
func NewService(users UserStore, blacklist BlacklistStore, hasher *Hasher, codec *TokenCodec, opts ...ServiceOption) *Service {
	s := &Service{
		users:     users,
		blacklist: blacklist,
		hasher:    hasher,
		codec:     codec,
		logger:    observability.NopLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token  string
	Claims *Claims
	User   *User
}

// Register creates a new account. Uniqueness is enforced by the store's
// atomic insert, so concurrent registrations of the same identity yield
// exactly one account and ErrDuplicateAccount for the rest.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.users.CreateUser(ctx, &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Status:       in.Status,
		Avatar:       in.Avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateUsername) {
			s.metrics.RecordAuthEvent("register", "duplicate")
			return nil, ErrDuplicateAccount
		}
		s.metrics.RecordAuthEvent("register", "error")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordAuthEvent("register", "success")
	s.logger.WithField("user_id", created.ID).WithField("username", created.Username).Info("User registered")
	return created.Sanitized(), nil
}

// Login verifies credentials and issues a session token. The checks run in
// the order lookup, status, password: an inactive account is reported as
// such even when the password is wrong.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.RecordAuthEvent("login", "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		s.metrics.RecordAuthEvent("login", "error")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive() {
		s.metrics.RecordAuthEvent("login", "inactive")
		s.logger.WithField("user_id", user.ID).Warn("Login refused for inactive account")
		return nil, ErrAccountInactive
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.metrics.RecordAuthEvent("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.codec.Issue(user.ID)
	if err != nil {
		s.metrics.RecordAuthEvent("login", "error")
		return nil, err
	}

	s.metrics.RecordAuthEvent("login", "success")
	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return &LoginResult{Token: token, Claims: claims, User: user.Sanitized()}, nil
}

// Logout blacklists token until its own expiry
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		s.metrics.RecordAuthEvent("logout", "no_session")
		return ErrNoActiveSession
	}

	hash := HashToken(token)
	listed, err := s.blacklist.Contains(ctx, hash)
	if err != nil {
		s.metrics.RecordAuthEvent("logout", "error")
		return fmt.Errorf("failed to check blacklist: %w", err)
	}
	if listed {
		s.metrics.RecordAuthEvent("logout", "already_logged_out")
		return ErrAlreadyLoggedOut
	}

	added, err := s.blacklist.Add(ctx, hash, s.expiryOf(token))
	if err != nil {
		s.metrics.RecordAuthEvent("logout", "error")
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	if !added {
		s.metrics.RecordAuthEvent("logout", "already_logged_out")
		return ErrAlreadyLoggedOut
	}

	s.metrics.RecordAuthEvent("logout", "success")
	s.metrics.RecordBlacklisted()
	s.logger.Info("Session terminated")
	return nil
}

// expiryOf returns when the blacklist entry for token may be dropped. A token
// that no longer verifies is kept for a full validity period.
func (s *Service) expiryOf(token string) time.Time {
	if claims, err := s.codec.Verify(token); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return s.now().Add(s.codec.Validity())
}

// Authenticate resolves a presented token to a session: decode, blacklist
// check, then user lookup.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		s.metrics.RecordAuthEvent("verify", "invalid_token")
		return nil, err
	}

	listed, err := s.blacklist.Contains(ctx, HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if listed {
		s.metrics.RecordAuthEvent("verify", "blacklisted")
		return nil, ErrAlreadyLoggedOut
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.RecordAuthEvent("verify", "user_not_found")
			return nil, ErrSessionUserGone
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &Session{User: user.Sanitized(), Token: token, Claims: claims}, nil
}

// GetUser returns a single account without its password hash
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// ListUsers returns every account without password hashes
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

// UpdateUser applies the present fields of in to the account. A new password is re-hashed.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now().UTC()

	updated, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", updated.ID).Info("User updated")
	return updated.Sanitized(), nil
}

// DeleteUser removes the account permanently
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("user_id", id).Info("User deleted")
	return nil
}
