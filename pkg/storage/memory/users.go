// Package memory provides in-process credential and blacklist stores for
// development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/platinummonkey/shopadmin/pkg/auth"
)

// UserStore keeps users in a map guarded by a mutex. Uniqueness checks and
// inserts happen under the same write lock.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*auth.User
}

// NewUserStore creates an empty store
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*auth.User)}
}

func (s *UserStore) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(user, ""); err != nil {
		return nil, err
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*auth.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Username < out[j].Username
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return nil, auth.ErrUserNotFound
	}
	if err := s.checkUnique(user, user.ID); err != nil {
		return nil, err
	}

	stored := *user
	s.users[user.ID] = &stored
	out := stored
	return &out, nil
}

func (s *UserStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return auth.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// checkUnique must be called with the write lock held
func (s *UserStore) checkUnique(user *auth.User, skipID string) error {
	for id, existing := range s.users {
		if id == skipID {
			continue
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return auth.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return auth.ErrDuplicateUsername
		}
	}
	return nil
}
