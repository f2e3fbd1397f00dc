package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/observability"
)

const backendName = "postgres"

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = pq.ErrorCode("23505")

const userColumns = `id, username, email, password_hash, role, status, avatar, created_at, updated_at`

// UserStore persists users in the users table
type UserStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewUserStore creates a user store. metrics may be nil.
func NewUserStore(db *sql.DB, metrics *observability.Metrics) *UserStore {
	return &UserStore{db: db, metrics: metrics}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*auth.User, error) {
	u := &auth.User{}
	var role, status string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &status, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	u.Status = auth.Status(status)
	return u, nil
}

// CreateUser inserts user in a single statement. The unique constraints on
// username and email make concurrent inserts of the same identity fail.
func (s *UserStore) CreateUser(ctx context.Context, user *auth.User) (created *auth.User, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("create_user", backendName, start, err) }(time.Now())

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	created, err = scanUser(s.db.QueryRowContext(ctx, query,
		id, user.Username, user.Email, user.PasswordHash, string(user.Role), string(user.Status),
		user.Avatar, user.CreatedAt, user.UpdatedAt))
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (user *auth.User, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("get_user", backendName, start, ignoreNotFound(err)) }(time.Now())

	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, auth.ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err = scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (user *auth.User, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("get_user_by_username", backendName, start, ignoreNotFound(err)) }(time.Now())

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err = scanUser(s.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (s *UserStore) ListUsers(ctx context.Context) (users []*auth.User, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("list_users", backendName, start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, username`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users = make([]*auth.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, user *auth.User) (updated *auth.User, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("update_user", backendName, start, ignoreNotFound(err)) }(time.Now())

	query := `UPDATE users
		SET username = $2, email = $3, password_hash = $4, role = $5, status = $6, avatar = $7, updated_at = $8
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err = scanUser(s.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, string(user.Role), string(user.Status),
		user.Avatar, user.UpdatedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (s *UserStore) DeleteUser(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("delete_user", backendName, start, ignoreNotFound(err)) }(time.Now())

	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return auth.ErrUserNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// duplicateError maps a unique violation to the matching auth error
func duplicateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pqErr.Constraint, "email") {
		return auth.ErrDuplicateEmail
	}
	return auth.ErrDuplicateUsername
}

func ignoreNotFound(err error) error {
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil
	}
	return err
}
