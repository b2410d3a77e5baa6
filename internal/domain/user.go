package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for platform accounts across all roles.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Verified     bool
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the authenticated identity resolved for a single request.
// It is built from a verified token plus an identity-store lookup and is
// never persisted.
type Principal struct {
	ID       string
	Email    string
	Role     Role
	Verified bool
}

// PrincipalFor derives the per-request principal from a stored user.
func PrincipalFor(u *User) *Principal {
	return &Principal{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Verified: u.Verified,
	}
}
