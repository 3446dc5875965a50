package organization

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines organization data access
type Repository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	UpdateFeatures(ctx context.Context, id uuid.UUID, features FeatureMap) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	AddMembership(ctx context.Context, m *Membership) error
	GetMembership(ctx context.Context, userID, orgID uuid.UUID) (*Membership, error)
	ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates organization repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, org *Organization) error {
	query := `
		INSERT INTO organizations (id, name, status, enabled_features, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		org.ID, org.Name, org.Status, org.EnabledFeatures, org.CreatedAt, org.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	query := `SELECT * FROM organizations WHERE id = $1`
	var org Organization
	err := r.db.GetContext(ctx, &org, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) List(ctx context.Context) ([]*Organization, error) {
	var orgs []*Organization
	if err := r.db.SelectContext(ctx, &orgs, `SELECT * FROM organizations ORDER BY name`); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) UpdateFeatures(ctx context.Context, id uuid.UUID, features FeatureMap) error {
	query := `UPDATE organizations SET enabled_features = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, features)
	return err
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE organizations SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) AddMembership(ctx context.Context, m *Membership) error {
	query := `
		INSERT INTO organization_memberships (id, user_id, organization_id, org_role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.OrganizationID, m.OrgRole, m.IsActive, m.CreatedAt,
	)
	return err
}

func (r *repository) GetMembership(ctx context.Context, userID, orgID uuid.UUID) (*Membership, error) {
	query := `SELECT * FROM organization_memberships WHERE user_id = $1 AND organization_id = $2`
	var m Membership
	err := r.db.GetContext(ctx, &m, query, userID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error) {
	query := `SELECT * FROM organization_memberships WHERE user_id = $1 AND is_active = true`
	var memberships []*Membership
	if err := r.db.SelectContext(ctx, &memberships, query, userID); err != nil {
		return nil, err
	}
	return memberships, nil
}
