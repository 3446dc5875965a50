package support

import (
	"time"

	"github.com/google/uuid"
)

// CreateSessionRequest for POST /support/session
type CreateSessionRequest struct {
	OrganizationID  string   `json:"organization_id" validate:"required,uuid"`
	SessionType     string   `json:"session_type" validate:"required,session_type"`
	Reason          string   `json:"reason" validate:"required,min=10,max=1000"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,gte=15,lte=480"`
	AccessScopes    []string `json:"access_scopes" validate:"omitempty,max=20,dive,max=100"`
}

// ToggleModeRequest for PATCH /support/session/{id}/toggle-mode
type ToggleModeRequest struct {
	SupportMode *bool `json:"support_mode" validate:"required"`
}

// MintTokenRequest for POST /support/impersonation/token. Organization and
// mode are optional cross-checks; the token is always minted from the stored
// session row, never from client-supplied values.
type MintTokenRequest struct {
	SessionID      string `json:"session_id" validate:"required,uuid"`
	OrganizationID string `json:"organization_id" validate:"omitempty,uuid"`
	Mode           string `json:"mode" validate:"omitempty,oneof=read write"`
}

// BindRequest for POST /support/impersonation/bind
type BindRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionResponse is the API shape of a support session
type SessionResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	SessionType    string    `json:"session_type"`
	Reason         string    `json:"reason"`
	AccessScopes   []string  `json:"access_scopes"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// SessionResponseFromEntity converts entity to response
func SessionResponseFromEntity(s *Session) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		SessionType:    string(s.SessionType),
		Reason:         s.Reason,
		AccessScopes:   s.AccessScopes,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
	}
}

// TokenResponse carries a freshly minted impersonation token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Mode      string `json:"mode"`
}

// BindResponse reports the bound impersonation state
type BindResponse struct {
	SessionID      uuid.UUID `json:"session_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Mode           string    `json:"mode"`
	BoundAt        time.Time `json:"bound_at"`
}

// AuditLogResponse is the API shape of one audit entry
type AuditLogResponse struct {
	ID               uuid.UUID              `json:"id"`
	SessionID        uuid.UUID              `json:"session_id"`
	SuperAdminUserID uuid.UUID              `json:"super_admin_user_id"`
	OrganizationID   uuid.UUID              `json:"organization_id"`
	Action           string                 `json:"action"`
	Description      string                 `json:"description"`
	Details          map[string]interface{} `json:"details,omitempty"`
	AccessLevel      string                 `json:"access_level"`
	IPAddress        string                 `json:"ip_address"`
	UserAgent        string                 `json:"user_agent"`
	CreatedAt        time.Time              `json:"created_at"`
}
