package auth

import (
	"context"
	"time"
)

// UserStore persists user accounts. Implementations enforce username and
// email uniqueness atomically and report violations as ErrDuplicateUsername
// or ErrDuplicateEmail. Lookups of missing users return ErrUserNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// BlacklistStore records invalidated session tokens by hash
type BlacklistStore interface {
	// Add inserts the entry if absent. It reports false when the hash was
	// already present.
	Add(ctx context.Context, tokenHash string, expiresAt time.Time) (bool, error)
	Contains(ctx context.Context, tokenHash string) (bool, error)
}
