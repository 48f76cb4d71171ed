// AngelaMos | 2026
// entity.go

package account

import (
	"fmt"
	"time"
)

// User is an account scoped to a single tenant. (TenantID, Email) is unique
// among the users of a tenant; the same email may exist in other tenants.
type User struct {
	ID           string    `db:"id"`
	TenantID     string    `db:"tenant_id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewUser is the data handed to a Repository for persistence. The
// repository assigns the ID and timestamps.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	TenantID     string
	Role         Role
}

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ParseRole maps s onto the closed set of roles. The empty string yields
// RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleUser, nil
	case RoleAdmin, RoleManager, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
