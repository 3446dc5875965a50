package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a tenant-side account. RoleID points at the
// organization-scoped permission role; DefaultOrganizationID is used when a
// request does not name an organization explicitly.
type User struct {
	ID                    uuid.UUID     `db:"id" json:"id"`
	Email                 string        `db:"email" json:"email"`
	PasswordHash          string        `db:"password_hash" json:"-"`
	Name                  string        `db:"name" json:"name"`
	RoleID                uuid.NullUUID `db:"role_id" json:"role_id,omitempty"`
	DefaultOrganizationID uuid.NullUUID `db:"default_organization_id" json:"default_organization_id,omitempty"`
	IsActive              bool          `db:"is_active" json:"is_active"`
	CreatedAt             time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}
