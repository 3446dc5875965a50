package support

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines support session data access
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateSessionType(ctx context.Context, id uuid.UUID, t SessionType) error
	DeactivateSession(ctx context.Context, id uuid.UUID) error
	ListSessionsByOperator(ctx context.Context, operatorID uuid.UUID) ([]*Session, error)
}

// AuditRepository is the append-only audit sink. There is deliberately no
// update or delete.
type AuditRepository interface {
	Insert(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]*AuditLog, error)
}

// AuditFilter narrows audit queries
type AuditFilter struct {
	OrganizationID uuid.UUID
	SessionID      uuid.UUID
	Limit          int
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates support session repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO support_sessions (
			id, super_admin_user_id, organization_id, session_type,
			reason, access_scopes, is_active, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.SuperAdminUserID, s.OrganizationID, s.SessionType,
		s.Reason, s.AccessScopes, s.IsActive, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

func (r *repository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT * FROM support_sessions WHERE id = $1`
	var s Session
	err := r.db.GetContext(ctx, &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateSessionType(ctx context.Context, id uuid.UUID, t SessionType) error {
	query := `UPDATE support_sessions SET session_type = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, t)
	return err
}

func (r *repository) DeactivateSession(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE support_sessions SET is_active = false WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) ListSessionsByOperator(ctx context.Context, operatorID uuid.UUID) ([]*Session, error) {
	query := `SELECT * FROM support_sessions WHERE super_admin_user_id = $1 ORDER BY created_at DESC`
	var sessions []*Session
	if err := r.db.SelectContext(ctx, &sessions, query, operatorID); err != nil {
		return nil, err
	}
	return sessions, nil
}

type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates the append-only audit repository
func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, entry *AuditLog) error {
	query := `
		INSERT INTO support_audit_logs (
			id, session_id, super_admin_user_id, organization_id,
			action, description, details, access_level,
			ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.SessionID, entry.SuperAdminUserID, entry.OrganizationID,
		entry.Action, entry.Description, entry.Details, entry.AccessLevel,
		entry.IPAddress, entry.UserAgent, entry.CreatedAt,
	)
	return err
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]*AuditLog, error) {
	query := `SELECT * FROM support_audit_logs WHERE 1=1`
	args := []interface{}{}

	if filter.OrganizationID != uuid.Nil {
		args = append(args, filter.OrganizationID)
		query += ` AND organization_id = $` + itoa(len(args))
	}
	if filter.SessionID != uuid.Nil {
		args = append(args, filter.SessionID)
		query += ` AND session_id = $` + itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + itoa(len(args))

	var entries []*AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
