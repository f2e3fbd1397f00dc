package auth

import "time"

// User represents a dashboard operator account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose hash
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the account may log in
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Sanitized returns a copy of the user without the password hash
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// Role represents the dashboard role of a user
type Role string

const (
	RoleAdmin      Role = "admin"      // Full access, including user administration
	RoleManager    Role = "manager"    // Store management
	RoleDelivery   Role = "delivery"   // Order fulfilment
	RoleController Role = "controller" // Reporting
	RoleOther      Role = "other"      // Default for new accounts
)

// Roles lists every valid role
var Roles = []Role{RoleAdmin, RoleManager, RoleDelivery, RoleController, RoleOther}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Status represents whether an account may log in
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Session is the authenticated request context attached by the session middleware
type Session struct {
	User   *User
	Token  string
	Claims *Claims
}

// HasRole checks if the session user has one of the given roles
func (s *Session) HasRole(roles ...Role) bool {
	if s == nil || s.User == nil {
		return false
	}
	for _, role := range roles {
		if s.User.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the session user is an admin
func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// BlacklistEntry is a token that may no longer be used, keyed by its hash
type BlacklistEntry struct {
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
