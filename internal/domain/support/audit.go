package support

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuditLogger writes append-only forensic records. Audit entries are the
// only trail of what an operator did inside a tenant, so failures are
// logged loudly but never swallow the caller's result.
type AuditLogger struct {
	repo AuditRepository
}

// NewAuditLogger creates the audit logger
func NewAuditLogger(repo AuditRepository) *AuditLogger {
	return &AuditLogger{repo: repo}
}

// Entry is the caller-facing shape of one audit record.
type Entry struct {
	SessionID        uuid.UUID
	SuperAdminUserID uuid.UUID
	OrganizationID   uuid.UUID
	Action           string
	Description      string
	Details          map[string]interface{}
	AccessLevel      string
	IPAddress        string
	UserAgent        string
}

// Record appends one entry.
func (l *AuditLogger) Record(ctx context.Context, e Entry) error {
	var details json.RawMessage
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = raw
	}

	entry := &AuditLog{
		ID:               uuid.New(),
		SessionID:        e.SessionID,
		SuperAdminUserID: e.SuperAdminUserID,
		OrganizationID:   e.OrganizationID,
		Action:           e.Action,
		Description:      e.Description,
		Details:          details,
		AccessLevel:      e.AccessLevel,
		IPAddress:        e.IPAddress,
		UserAgent:        e.UserAgent,
		CreatedAt:        time.Now(),
	}

	if err := l.repo.Insert(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("session_id", e.SessionID.String()).
			Str("action", e.Action).
			Msg("Failed to write audit entry")
		return err
	}
	return nil
}

// List returns audit entries matching the filter.
func (l *AuditLogger) List(ctx context.Context, filter AuditFilter) ([]*AuditLog, error) {
	return l.repo.List(ctx, filter)
}
