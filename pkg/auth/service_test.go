package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type serviceFixture struct {
	svc       *auth.Service
	users     *memory.UserStore
	blacklist *memory.BlacklistStore
	codec     *auth.TokenCodec
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	users := memory.NewUserStore()
	blacklist := memory.NewBlacklistStore()
	codec := auth.NewTokenCodec([]byte("service-test-secret"))
	svc := auth.NewService(users, blacklist, auth.NewHasher(bcrypt.MinCost), codec)
	return &serviceFixture{svc: svc, users: users, blacklist: blacklist, codec: codec}
}

func (f *serviceFixture) registerAlice(t *testing.T) *auth.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func TestService_RegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	registered := f.registerAlice(t)
	assert.Empty(t, registered.PasswordHash)
	assert.Equal(t, auth.RoleOther, registered.Role)
	assert.Equal(t, auth.StatusActive, registered.Status)

	result, err := f.svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, registered.ID, result.User.ID)
	assert.Empty(t, result.User.PasswordHash)

	session, err := f.svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, session.User.ID)
	assert.Empty(t, session.User.PasswordHash)
	assert.Equal(t, result.Token, session.Token)
}

func TestService_RegisterStoresHashNotPlaintext(t *testing.T) {
	f := newServiceFixture(t)
	registered := f.registerAlice(t)

	stored, err := f.users.GetUserByID(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.registerAlice(t)

	_, err := f.svc.Register(ctx, auth.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrDuplicateAccount)

	_, err = f.svc.Register(ctx, auth.RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrDuplicateAccount)
}

func TestService_ConcurrentRegisterCreatesOneAccount(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(ctx, auth.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, auth.ErrDuplicateAccount)
	}
	assert.Equal(t, 1, successes)
}

func TestService_RegisterValidation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Register(context.Background(), auth.RegisterInput{Username: "alice", Email: "bad", Password: "secret123"})
	var verr *auth.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	alice := f.registerAlice(t)

	_, errWrongPassword := f.svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "wrong-password"})
	_, errUnknownUser := f.svc.Login(ctx, auth.LoginInput{Username: "nobody", Password: "secret123"})

	assert.ErrorIs(t, errWrongPassword, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownUser, auth.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())

	inactive := auth.StatusInactive
	_, err := f.svc.UpdateUser(ctx, alice.ID, auth.UpdateInput{Status: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)

	// status is checked before the password
	_, err = f.svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)
	assert.NotEqual(t, auth.ErrInvalidCredentials.Error(), err.Error())
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.registerAlice(t)

	result, err := f.svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Logout(ctx, ""), auth.ErrNoActiveSession)

	require.NoError(t, f.svc.Logout(ctx, result.Token))
	assert.ErrorIs(t, f.svc.Logout(ctx, result.Token), auth.ErrAlreadyLoggedOut)

	// the codec alone still accepts the token, the service does not
	_, err = f.codec.Verify(result.Token)
	assert.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrAlreadyLoggedOut)
}

func TestService_LogoutEntryExpiresWithToken(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.registerAlice(t)

	result, err := f.svc.Login(ctx, auth.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, result.Token))

	// nothing is purged until the token itself expires
	removed, err := f.blacklist.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.WithinDuration(t, time.Now().Add(auth.TokenValidity), result.Claims.ExpiresAt.Time, time.Minute)
}

func TestService_AuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	alice := f.registerAlice(t)

	_, err := f.svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = f.svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrMalformedToken)

	expired, _, err := f.codec.WithClock(func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }).Issue(alice.ID)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)

	token, _, err := f.codec.Issue(alice.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteUser(ctx, alice.ID))
	_, err = f.svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionUserGone)
}

func TestService_UserAdministration(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	alice := f.registerAlice(t)
	bob, err := f.svc.Register(ctx, auth.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	taken := "alice@example.com"
	_, err = f.svc.UpdateUser(ctx, bob.ID, auth.UpdateInput{Email: &taken})
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)

	takenName := "alice"
	_, err = f.svc.UpdateUser(ctx, bob.ID, auth.UpdateInput{Username: &takenName})
	assert.ErrorIs(t, err, auth.ErrDuplicateUsername)

	newPassword := "another-secret"
	role := auth.RoleManager
	updated, err := f.svc.UpdateUser(ctx, bob.ID, auth.UpdateInput{Password: &newPassword, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManager, updated.Role)

	_, err = f.svc.Login(ctx, auth.LoginInput{Username: "bob", Password: "another-secret"})
	assert.NoError(t, err)

	got, err := f.svc.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = f.svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = f.svc.UpdateUser(ctx, "missing", auth.UpdateInput{Role: &role})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, "missing"), auth.ErrUserNotFound)
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.registerAlice(t)

	doc := []byte(`
users:
  - username: admin
    email: admin@example.com
    password: admin-password
    role: admin
  - username: alice
    email: alice@example.com
    password: secret123
  - username: ""
    password: skipped
`)

	created, err := f.svc.Seed(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	admin, err := f.users.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)

	_, err = f.svc.Seed(ctx, []byte("users: [not-a-map"))
	assert.Error(t, err)
}
