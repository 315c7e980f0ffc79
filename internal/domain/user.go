package domain

import (
	"context"
	"time"
)

// User represents an account in the system. Email is the login identifier;
// the username is kept for display and administrative tooling.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized in responses
	Role         Role      `json:"role"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Registration is the input payload for self-registration. There is
// deliberately no role field here: self-registered accounts always get
// RoleUser, and elevation is a separate admin-only operation.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// UserRepository defines the persistence contract for the User entity.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
}
