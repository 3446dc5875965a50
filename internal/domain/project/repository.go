package project

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines project data access. Every query filters by
// organization_id; there is no variant that reads across tenants.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Project, error)
	List(ctx context.Context, orgID uuid.UUID) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates project repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (id, organization_id, name, description, status, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OrganizationID,
		p.Name,
		p.Description,
		p.Status,
		p.CreatedByID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Project, error) {
	query := `SELECT * FROM projects WHERE id = $1 AND organization_id = $2`
	var p Project
	if err := r.db.GetContext(ctx, &p, query, id, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID) ([]*Project, error) {
	query := `SELECT * FROM projects WHERE organization_id = $1 ORDER BY created_at DESC`
	projects := []*Project{}
	if err := r.db.SelectContext(ctx, &projects, query, orgID); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects
		SET name = $3, description = $4, status = $5, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.OrganizationID, p.Name, p.Description, p.Status)
	return err
}

func (r *repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1 AND organization_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, orgID)
	return err
}
