package auth

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest password bcrypt accepts
	MaxPasswordBytes = 72
)

var validate = newValidator()

// newValidator reports fields by their JSON names and adds maxbytes, which
// bounds the byte length of a string where max counts runes
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

var fieldMessages = map[string]string{
	"username": "Username is required",
	"email":    "Enter a valid email address",
	"password": "Must be at least 8 chars long",
	"role":     "Role must be one of admin, manager, delivery, controller, other",
	"status":   "Status must be active or inactive",
}

// check runs the struct rules and converts failures into a ValidationError
// in field order
func check(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	verr := &ValidationError{}
	for _, fe := range failures {
		verr.Add(fe.Field(), messageFor(fe))
	}
	return verr.OrNil()
}

func messageFor(fe validator.FieldError) string {
	if fe.Field() == "password" {
		switch fe.Tag() {
		case "required":
			return "Password is required"
		case "maxbytes":
			return "Must be at most 72 bytes long"
		}
	}
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}
	return "Invalid value"
}

// RegisterInput is the payload for creating an account
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,maxbytes=72"`
	Role     Role   `json:"role,omitempty" validate:"oneof=admin manager delivery controller other"`
	Status   Status `json:"status,omitempty" validate:"oneof=active inactive"`
	Avatar   string `json:"avatar,omitempty"`
}

// Normalize trims whitespace, lowercases the email and fills defaults
func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Avatar = strings.TrimSpace(in.Avatar)
	if in.Role == "" {
		in.Role = RoleOther
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
}

// Validate checks the normalized input
func (in *RegisterInput) Validate() error {
	return check(in)
}

// LoginInput is the payload for logging in
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate trims the username and requires both fields
func (in *LoginInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	return check(in)
}

// UpdateInput is the payload for editing an account. Nil fields are left unchanged.
type UpdateInput struct {
	Username *string `json:"username,omitempty" validate:"omitnil,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitnil,email"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=8,maxbytes=72"`
	Role     *Role   `json:"role,omitempty" validate:"omitnil,oneof=admin manager delivery controller other"`
	Status   *Status `json:"status,omitempty" validate:"omitnil,oneof=active inactive"`
	Avatar   *string `json:"avatar,omitempty"`
}

// Fields lists the names of the fields present in the update
func (in *UpdateInput) Fields() []string {
	var fields []string
	if in.Username != nil {
		fields = append(fields, "username")
	}
	if in.Email != nil {
		fields = append(fields, "email")
	}
	if in.Password != nil {
		fields = append(fields, "password")
	}
	if in.Role != nil {
		fields = append(fields, "role")
	}
	if in.Status != nil {
		fields = append(fields, "status")
	}
	if in.Avatar != nil {
		fields = append(fields, "avatar")
	}
	return fields
}

// Validate normalizes and checks the fields that are present
func (in *UpdateInput) Validate() error {
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &normalized
	}
	return check(in)
}
