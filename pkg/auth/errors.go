package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified sentinel carrying the user-facing message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrDuplicateAccount  = &Error{KindConflict, "It seems you already have an account, please log in instead."}
	ErrDuplicateEmail    = &Error{KindConflict, "Email is already in use by another user"}
	ErrDuplicateUsername = &Error{KindConflict, "Username is already in use by another user"}

	ErrInvalidCredentials = &Error{KindAuthentication, "Invalid username or password. Please try again with the correct credentials."}
	ErrAccountInactive    = &Error{KindAuthentication, "This account is inactive, please try again later or use an active account instead"}
	ErrNoActiveSession    = &Error{KindAuthentication, "No user is currently logged in."}
	ErrAlreadyLoggedOut   = &Error{KindAuthentication, "The session is already terminated."}
	ErrMissingToken       = &Error{KindAuthentication, "This session has expired. Please login"}
	ErrExpiredToken       = &Error{KindAuthentication, "This session has expired. Please login"}
	ErrInvalidSignature   = &Error{KindAuthentication, "This session has expired. Please login"}
	ErrMalformedToken     = &Error{KindAuthentication, "This session has expired. Please login"}
	ErrSessionUserGone    = &Error{KindAuthentication, "User not found"}

	ErrForbidden = &Error{KindAuthorization, "You are not authorized to view this page."}

	ErrUserNotFound = &Error{KindNotFound, "User not found"}
)

// KindOf returns the classification of err, KindInternal when unclassified
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	return KindInternal
}

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects input validation failures
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field failure
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds failures, nil otherwise
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
