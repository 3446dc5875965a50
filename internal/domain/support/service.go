package support

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/essayons/essayons-api/internal/pkg/metrics"
)

// OrganizationGetter verifies the target organization exists.
type OrganizationGetter interface {
	Exists(ctx context.Context, orgID uuid.UUID) (bool, error)
}

// CreateParams are the inputs for opening a support session.
type CreateParams struct {
	OrganizationID  uuid.UUID
	SessionType     SessionType
	Reason          string
	DurationMinutes int
	AccessScopes    Scopes
	IPAddress       string
	UserAgent       string
}

// Service owns the support session lifecycle state machine:
// Requested → Active(ReadOnly|Write) → Ended, with passive expiry applied
// at every access.
type Service struct {
	repo  Repository
	orgs  OrganizationGetter
	audit *AuditLogger
	now   func() time.Time
}

// NewService creates support session service
func NewService(repo Repository, orgs OrganizationGetter, audit *AuditLogger) *Service {
	return &Service{repo: repo, orgs: orgs, audit: audit, now: time.Now}
}

// Create validates and opens a support session for an operator.
func (s *Service) Create(ctx context.Context, operatorID uuid.UUID, p CreateParams) (*Session, error) {
	if p.SessionType != SessionReadOnly && p.SessionType != SessionSupportMode {
		return nil, ErrInvalidSessionType
	}
	if len(strings.TrimSpace(p.Reason)) < MinReasonLength {
		return nil, ErrReasonTooShort
	}
	duration := time.Duration(p.DurationMinutes) * time.Minute
	if duration < MinDuration || duration > MaxDuration {
		return nil, ErrInvalidDuration
	}

	exists, err := s.orgs.Exists(ctx, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOrganizationNotFound
	}

	now := s.now()
	session := &Session{
		ID:               uuid.New(),
		SuperAdminUserID: operatorID,
		OrganizationID:   p.OrganizationID,
		SessionType:      p.SessionType,
		Reason:           p.Reason,
		AccessScopes:     p.AccessScopes,
		IsActive:         true,
		CreatedAt:        now,
		ExpiresAt:        now.Add(duration),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.SupportSessionEvents.WithLabelValues(ActionSessionCreated).Inc()
	s.audit.Record(ctx, Entry{
		SessionID:        session.ID,
		SuperAdminUserID: operatorID,
		OrganizationID:   session.OrganizationID,
		Action:           ActionSessionCreated,
		Description:      "Support session created: " + p.Reason,
		Details: map[string]interface{}{
			"session_type":     string(session.SessionType),
			"duration_minutes": p.DurationMinutes,
			"access_scopes":    session.AccessScopes,
		},
		AccessLevel: session.SessionType.Mode(),
		IPAddress:   p.IPAddress,
		UserAgent:   p.UserAgent,
	})

	return session, nil
}

// ownedLiveSession loads a session and enforces ownership plus liveness.
func (s *Service) ownedLiveSession(ctx context.Context, operatorID, sessionID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.SuperAdminUserID != operatorID {
		return nil, ErrNotSessionOwner
	}
	if !session.IsActive {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// ToggleMode flips the session between read-only and support (write) mode.
// The new mode is written synchronously so the very next authorization
// check anywhere observes it.
func (s *Service) ToggleMode(ctx context.Context, operatorID, sessionID uuid.UUID, supportMode bool, ip, userAgent string) (*Session, error) {
	session, err := s.ownedLiveSession(ctx, operatorID, sessionID)
	if err != nil {
		return nil, err
	}

	newType := SessionReadOnly
	if supportMode {
		newType = SessionSupportMode
	}
	if err := s.repo.UpdateSessionType(ctx, sessionID, newType); err != nil {
		return nil, err
	}
	session.SessionType = newType

	metrics.SupportSessionEvents.WithLabelValues(ActionModeToggled).Inc()
	s.audit.Record(ctx, Entry{
		SessionID:        session.ID,
		SuperAdminUserID: operatorID,
		OrganizationID:   session.OrganizationID,
		Action:           ActionModeToggled,
		Description:      "Session mode set to " + string(newType),
		AccessLevel:      newType.Mode(),
		IPAddress:        ip,
		UserAgent:        userAgent,
	})

	return session, nil
}

// End deactivates an owned session. Ending an already-ended session reports
// not-found rather than an error, making the operation idempotent for the
// caller.
func (s *Service) End(ctx context.Context, operatorID, sessionID uuid.UUID, ip, userAgent string) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || !session.IsActive {
		return ErrSessionNotFound
	}
	if session.SuperAdminUserID != operatorID {
		return ErrNotSessionOwner
	}

	if err := s.repo.DeactivateSession(ctx, sessionID); err != nil {
		return err
	}

	metrics.SupportSessionEvents.WithLabelValues(ActionSessionEnded).Inc()
	s.audit.Record(ctx, Entry{
		SessionID:        session.ID,
		SuperAdminUserID: operatorID,
		OrganizationID:   session.OrganizationID,
		Action:           ActionSessionEnded,
		Description:      "Support session ended",
		AccessLevel:      session.SessionType.Mode(),
		IPAddress:        ip,
		UserAgent:        userAgent,
	})

	return nil
}

// Get returns a session by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListByOperator lists the operator's sessions, newest first
func (s *Service) ListByOperator(ctx context.Context, operatorID uuid.UUID) ([]*Session, error) {
	return s.repo.ListSessionsByOperator(ctx, operatorID)
}

// CurrentState reads the persisted session and evaluates liveness now.
// Every authorization decision goes through here — never through a value
// cached at bind time — so revocation and mode toggles take effect on the
// very next request.
func (s *Service) CurrentState(ctx context.Context, sessionID uuid.UUID) (*Session, bool, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if session == nil {
		return nil, false, nil
	}
	return session, session.CurrentlyActive(s.now()), nil
}

// ImpersonationState reports whether the session is live right now and, if
// so, whether it is read-only. Used by the write enforcement layer on every
// mutating request.
func (s *Service) ImpersonationState(ctx context.Context, sessionID uuid.UUID) (active, readOnly bool, err error) {
	session, live, err := s.CurrentState(ctx, sessionID)
	if err != nil {
		return false, false, err
	}
	if !live {
		return false, false, nil
	}
	return true, session.SessionType == SessionReadOnly, nil
}

// IsReadOnlyActive reports whether the session is live and read-only.
// Satisfies the permission resolver's support-state dependency.
func (s *Service) IsReadOnlyActive(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	session, active, err := s.CurrentState(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return active && session.SessionType == SessionReadOnly, nil
}

// RecordBlockedWrite appends the audit entry for a write rejected by the
// read-only enforcer.
func (s *Service) RecordBlockedWrite(ctx context.Context, sessionID uuid.UUID, method, path, ip, userAgent string) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		return
	}

	metrics.BlockedWrites.WithLabelValues(method).Inc()
	s.audit.Record(ctx, Entry{
		SessionID:        session.ID,
		SuperAdminUserID: session.SuperAdminUserID,
		OrganizationID:   session.OrganizationID,
		Action:           ActionWriteBlocked,
		Description:      "Blocked " + method + " " + path + " in read-only session",
		Details: map[string]interface{}{
			"method": method,
			"path":   path,
		},
		AccessLevel: ModeRead,
		IPAddress:   ip,
		UserAgent:   userAgent,
	})
}
