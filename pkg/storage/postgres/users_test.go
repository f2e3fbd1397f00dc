package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceID = "6f1c2b8e-3d4a-4f6b-9c2d-1e5f7a8b9c0d"

var userRowColumns = []string{"id", "username", "email", "password_hash", "role", "status", "avatar", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db, observability.NewMetrics(prometheus.NewRegistry())), mock
}

func aliceRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(userRowColumns).
		AddRow(aliceID, "alice", "alice@example.com", "$2a$04$hash", "admin", "active", "", now, now)
}

func TestUserStore_CreateUser(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(aliceID, "alice", "alice@example.com", "$2a$04$hash", "admin", "active", "", now, now).
		WillReturnRows(aliceRow(now))

	created, err := store.CreateUser(context.Background(), &auth.User{
		ID:           aliceID,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$hash",
		Role:         auth.RoleAdmin,
		Status:       auth.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	assert.Equal(t, aliceID, created.ID)
	assert.Equal(t, auth.RoleAdmin, created.Role)
	assert.Equal(t, auth.StatusActive, created.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_CreateUser_GeneratesID(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "alice", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(aliceRow(now))

	_, err := store.CreateUser(context.Background(), &auth.User{Username: "alice", Role: auth.RoleOther, Status: auth.StatusActive})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_CreateUser_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email", "users_email_unique", auth.ErrDuplicateEmail},
		{"username", "users_username_unique", auth.ErrDuplicateUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			_, err := store.CreateUser(context.Background(), &auth.User{Username: "alice", Email: "alice@example.com"})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserStore_CreateUser_OtherError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("connection reset"))

	_, err := store.CreateUser(context.Background(), &auth.User{Username: "alice"})
	require.Error(t, err)
	assert.Equal(t, auth.KindInternal, auth.KindOf(err))
}

func TestUserStore_GetUserByID(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(aliceID).
		WillReturnRows(aliceRow(now))

	user, err := store.GetUserByID(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_GetUserByID_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(aliceID).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUserByID(context.Background(), aliceID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	// malformed ids never reach the database
	_, err = store.GetUserByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_GetUserByUsername(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(aliceRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, aliceID, user.ID)

	_, err = store.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_ListUsers(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := aliceRow(now).
		AddRow("0b5e0d7c-8f0e-4b8e-9a51-2f4f6b9d3c21", "bob", "bob@example.com", "$2a$04$hash", "manager", "inactive", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at")).WillReturnRows(rows)

	users, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, auth.StatusInactive, users[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_UpdateUser(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs(aliceID, "alice", "alice@example.com", "$2a$04$hash", "admin", "active", "", now).
		WillReturnRows(aliceRow(now))

	updated, err := store.UpdateUser(context.Background(), &auth.User{
		ID: aliceID, Username: "alice", Email: "alice@example.com", PasswordHash: "$2a$04$hash",
		Role: auth.RoleAdmin, Status: auth.StatusActive, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, aliceID, updated.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_UpdateUser_Errors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_unique"})

	_, err := store.UpdateUser(context.Background(), &auth.User{ID: aliceID})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = store.UpdateUser(context.Background(), &auth.User{ID: aliceID})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_DeleteUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(aliceID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(aliceID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteUser(context.Background(), aliceID))
	assert.ErrorIs(t, store.DeleteUser(context.Background(), aliceID), auth.ErrUserNotFound)
	assert.ErrorIs(t, store.DeleteUser(context.Background(), "bogus"), auth.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
