package dto

import "time"

// UpdateUserRequest payload for admin user edits.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=USER AGENT ADMIN"`
	Verified *bool   `json:"verified,omitempty"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE SUSPENDED"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
