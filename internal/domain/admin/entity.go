package admin

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents a platform operator role
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleSupport    Role = "support"
)

// Operator represents a platform staff account. Operators live outside any
// tenant; they reach tenant data only through support sessions.
type Operator struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         Role           `db:"role" json:"role"`
	Name         string         `db:"name" json:"name"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	LastLoginAt  sql.NullTime   `db:"last_login_at" json:"last_login_at,omitempty"`
	LastLoginIP  sql.NullString `db:"last_login_ip" json:"last_login_ip,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasPermission checks if the operator's role grants a permission
func (o *Operator) HasPermission(perm Permission) bool {
	permissions, ok := RolePermissions[o.Role]
	if !ok {
		return false
	}
	for _, p := range permissions {
		if p == perm {
			return true
		}
	}
	return false
}
