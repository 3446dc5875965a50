package organization

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents organization lifecycle state
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// OrgRole represents a user's role within an organization
type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"
)

// FeatureMap is the per-organization feature switchboard stored as JSONB.
// Absent entries are disabled (fail-closed).
type FeatureMap map[string]bool

// Value implements driver.Valuer
func (m FeatureMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *FeatureMap) Scan(src interface{}) error {
	if src == nil {
		*m = FeatureMap{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("feature map: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// Organization is an isolated customer account. All business data is scoped
// to exactly one organization.
type Organization struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Status          Status     `db:"status" json:"status"`
	EnabledFeatures FeatureMap `db:"enabled_features" json:"enabled_features"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive returns true if the organization may serve requests
func (o *Organization) IsActive() bool {
	return o.Status == StatusActive
}

// FeatureEnabled reports whether a feature is switched on. Missing entries
// are off.
func (o *Organization) FeatureEnabled(name string) bool {
	return o.EnabledFeatures[name]
}

// Membership joins a user to an organization. A user may hold several;
// exactly one is current per request via explicit selection.
type Membership struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	OrgRole        OrgRole   `db:"org_role" json:"org_role"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
