package permission

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Map is a flag→bool assignment stored as JSONB. For roles and groups it is
// a full grant set; for overrides it is partial and only listed flags apply.
type Map map[Flag]bool

// Value implements driver.Valuer
func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Map) Scan(src interface{}) error {
	if src == nil {
		*m = Map{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("permission map: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// Role is a named default capability set referenced by many users.
type Role struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Permissions    Map       `db:"permissions" json:"permissions"`
	IsSystem       bool      `db:"is_system" json:"is_system"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserGroup grants flags additively to its members.
type UserGroup struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Permissions    Map       `db:"permissions" json:"permissions"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GroupMembership joins a user to a group.
type GroupMembership struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	GroupID      uuid.UUID `db:"group_id" json:"group_id"`
	AssignedByID uuid.UUID `db:"assigned_by_id" json:"assigned_by_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Override is a per-user partial capability assignment. At most one active
// record per user; unlisted flags fall through to groups and role.
type Override struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	Permissions  Map       `db:"permissions" json:"permissions"`
	AssignedByID uuid.UUID `db:"assigned_by_id" json:"assigned_by_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Set is an effective capability assignment, total over AllFlags.
type Set map[Flag]bool

// Has reports the value for flag; absent flags are false (fail-closed).
func (s Set) Has(flag Flag) bool {
	return s[flag]
}
