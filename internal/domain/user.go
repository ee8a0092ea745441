package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role is the storefront role attached to a user account
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User is a storefront account. The review service only reads it.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserRepository defines read access to user accounts
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
