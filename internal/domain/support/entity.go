package support

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionType represents the support session mode
type SessionType string

const (
	SessionReadOnly    SessionType = "read_only"
	SessionSupportMode SessionType = "support_mode"
)

// Token modes on the wire; read_only maps to read, support_mode to write.
const (
	ModeRead  = "read"
	ModeWrite = "write"
)

// Mode returns the wire mode for the session type.
func (t SessionType) Mode() string {
	if t == SessionSupportMode {
		return ModeWrite
	}
	return ModeRead
}

// Duration bounds and minimum reason length for session creation.
const (
	MinDuration     = 15 * time.Minute
	MaxDuration     = 480 * time.Minute
	MinReasonLength = 10
	TokenTTL        = 5 * time.Minute
)

// Scopes is a list of access scopes stored as JSONB.
type Scopes []string

// Value implements driver.Valuer
func (s Scopes) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *Scopes) Scan(src interface{}) error {
	if src == nil {
		*s = Scopes{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scopes: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// Session is a time-boxed, audited grant letting a platform operator act
// within a tenant's context. Sessions are never hard-deleted; ended sessions
// remain for the audit trail.
type Session struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	SuperAdminUserID uuid.UUID   `db:"super_admin_user_id" json:"super_admin_user_id"`
	OrganizationID   uuid.UUID   `db:"organization_id" json:"organization_id"`
	SessionType      SessionType `db:"session_type" json:"session_type"`
	Reason           string      `db:"reason" json:"reason"`
	AccessScopes     Scopes      `db:"access_scopes" json:"access_scopes"`
	IsActive         bool        `db:"is_active" json:"is_active"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	ExpiresAt        time.Time   `db:"expires_at" json:"expires_at"`
}

// CurrentlyActive is the single authoritative liveness predicate: active
// and not past its deadline. Expiry is passive — checked here on every
// access, no background sweep required.
func (s *Session) CurrentlyActive(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// Audit actions recorded for support sessions.
const (
	ActionSessionCreated = "session_created"
	ActionModeToggled    = "mode_toggled"
	ActionSessionEnded   = "session_ended"
	ActionTokenMinted    = "token_minted"
	ActionSessionBound   = "session_bound"
	ActionWriteBlocked   = "write_blocked"
)

// AuditLog is one append-only forensic record of operator activity inside a
// tenant. Immutable once written.
type AuditLog struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	SessionID        uuid.UUID       `db:"session_id" json:"session_id"`
	SuperAdminUserID uuid.UUID       `db:"super_admin_user_id" json:"super_admin_user_id"`
	OrganizationID   uuid.UUID       `db:"organization_id" json:"organization_id"`
	Action           string          `db:"action" json:"action"`
	Description      string          `db:"description" json:"description"`
	Details          json.RawMessage `db:"details" json:"details,omitempty"`
	AccessLevel      string          `db:"access_level" json:"access_level"`
	IPAddress        string          `db:"ip_address" json:"ip_address"`
	UserAgent        string          `db:"user_agent" json:"user_agent"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}
