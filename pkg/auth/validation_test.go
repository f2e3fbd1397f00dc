package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}

func TestRegisterInput_Validate(t *testing.T) {
	tests := []struct {
		name       string
		input      RegisterInput
		wantFields []string
	}{
		{
			name:  "valid with defaults",
			input: RegisterInput{Username: " alice ", Email: "Alice@Example.com", Password: "secret123"},
		},
		{
			name:       "missing username",
			input:      RegisterInput{Username: "   ", Email: "a@example.com", Password: "secret123"},
			wantFields: []string{"username"},
		},
		{
			name:       "bad email",
			input:      RegisterInput{Username: "alice", Email: "nope", Password: "secret123"},
			wantFields: []string{"email"},
		},
		{
			name:       "display name email rejected",
			input:      RegisterInput{Username: "alice", Email: "Alice <a@example.com>", Password: "secret123"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			input:      RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"},
			wantFields: []string{"password"},
		},
		{
			name:  "password at bcrypt limit",
			input: RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("p", MaxPasswordBytes)},
		},
		{
			name:       "password over bcrypt limit",
			input:      RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("p", MaxPasswordBytes+1)},
			wantFields: []string{"password"},
		},
		{
			name:       "multibyte password over byte limit",
			input:      RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("é", 40)},
			wantFields: []string{"password"},
		},
		{
			name:       "unknown role",
			input:      RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret123", Role: "owner"},
			wantFields: []string{"role"},
		},
		{
			name:       "everything wrong",
			input:      RegisterInput{Status: "banned"},
			wantFields: []string{"username", "email", "password", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.Normalize()
			err := in.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, fieldsOf(t, err))
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestRegisterInput_Normalize(t *testing.T) {
	in := RegisterInput{Username: " alice ", Email: " Alice@Example.COM "}
	in.Normalize()

	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, "alice@example.com", in.Email)
	assert.Equal(t, RoleOther, in.Role)
	assert.Equal(t, StatusActive, in.Status)
}

func TestLoginInput_Validate(t *testing.T) {
	in := LoginInput{Username: "  alice ", Password: "x"}
	require.NoError(t, in.Validate())
	assert.Equal(t, "alice", in.Username)

	in = LoginInput{}
	assert.Equal(t, []string{"username", "password"}, fieldsOf(t, in.Validate()))
}

func TestUpdateInput_Validate(t *testing.T) {
	empty := UpdateInput{}
	assert.NoError(t, empty.Validate())

	email := " Bob@Example.com "
	in := UpdateInput{Email: &email}
	require.NoError(t, in.Validate())
	assert.Equal(t, "bob@example.com", *in.Email)

	short := "short"
	role := Role("owner")
	bad := UpdateInput{Password: &short, Role: &role}
	assert.Equal(t, []string{"password", "role"}, fieldsOf(t, bad.Validate()))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(ErrDuplicateAccount))
	assert.Equal(t, KindAuthentication, KindOf(ErrInvalidCredentials))
	assert.Equal(t, KindAuthorization, KindOf(ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(ErrUserNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "not_found", KindNotFound.String())
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())
}

func TestUpdateInput_Fields(t *testing.T) {
	assert.Empty(t, (&UpdateInput{}).Fields())

	email, pw := "a@b.io", "new-password"
	in := UpdateInput{Email: &email, Password: &pw}
	assert.Equal(t, []string{"email", "password"}, in.Fields())
}

func TestValidationMessages(t *testing.T) {
	in := RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("p", 73)}
	in.Normalize()

	var verr *ValidationError
	require.True(t, errors.As(in.Validate(), &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, FieldError{Field: "password", Message: "Must be at most 72 bytes long"}, verr.Fields[0])

	login := LoginInput{Username: "alice"}
	require.True(t, errors.As(login.Validate(), &verr))
	assert.Equal(t, FieldError{Field: "password", Message: "Password is required"}, verr.Fields[0])

	blank := "  "
	update := UpdateInput{Username: &blank}
	require.True(t, errors.As(update.Validate(), &verr))
	assert.Equal(t, FieldError{Field: "username", Message: "Username is required"}, verr.Fields[0])
	assert.Equal(t, "", *update.Username)
}
