package model

import (
	"time"
)

// UserRole represents a user's permission level.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleRegularUser UserRole = "user"
)

// User represents a registered account. Accounts are never physically
// deleted in normal operation; they are disabled via Active.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         UserRole  `json:"role" bson:"role"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// RegisterRequest is the request to create a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request to authenticate.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// UpdateUserRequest is the admin request to change a user's role or status.
type UpdateUserRequest struct {
	Role   *UserRole `json:"role,omitempty"`
	Active *bool     `json:"active,omitempty"`
}

// ChangePasswordRequest is the request to change the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
