package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidity is the lifetime of a session token
const TokenValidity = 30 * 24 * time.Hour

// Claims are the session token claims. UserID mirrors the subject for
// clients that read the payload directly.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenCodec issues and verifies signed session tokens
type TokenCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenCodec creates a codec signing with secret
func NewTokenCodec(secret []byte) *TokenCodec {
	return &TokenCodec{
		secret:   secret,
		validity: TokenValidity,
		now:      time.Now,
	}
}

// WithClock returns a copy of the codec that reads time from now
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *c
	clone.now = now
	return &clone
}

// WithValidity returns a copy of the codec issuing tokens valid for d.
// Non-positive values keep the current validity.
func (c *TokenCodec) WithValidity(d time.Duration) *TokenCodec {
	clone := *c
	if d > 0 {
		clone.validity = d
	}
	return &clone
}

// Validity returns the lifetime of issued tokens
func (c *TokenCodec) Validity() time.Duration {
	return c.validity
}

// Issue creates a signed token for userID
func (c *TokenCodec) Issue(userID string) (string, *Claims, error) {
	if userID == "" {
		return "", nil, fmt.Errorf("cannot issue token without user id")
	}

	issuedAt := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.validity)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// It does not consult the blacklist.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}

	if !parsed.Valid {
		return nil, ErrMalformedToken
	}

	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}
	if claims.Subject == "" {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

// HashToken computes the SHA256 hash of a token. Blacklist stores key on the
// hash so raw session tokens are never persisted.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
