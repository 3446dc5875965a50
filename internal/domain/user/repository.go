package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines user data access
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	SetDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error
	SetRole(ctx context.Context, userID, roleID uuid.UUID) error
	DefaultOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role_id, default_organization_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.RoleID,
		u.DefaultOrganizationID,
		u.IsActive,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT * FROM users WHERE id = $1`
	var u User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT * FROM users WHERE email = $1`
	var u User
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET name = $2, is_active = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.IsActive)
	return err
}

func (r *repository) SetDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	query := `UPDATE users SET default_organization_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, orgID)
	return err
}

func (r *repository) SetRole(ctx context.Context, userID, roleID uuid.UUID) error {
	query := `UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, roleID)
	return err
}

// DefaultOrganizationID satisfies the tenant resolver's default-org lookup.
// Returns uuid.Nil when the user has no stored default.
func (r *repository) DefaultOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	query := `SELECT default_organization_id FROM users WHERE id = $1`
	var id uuid.NullUUID
	if err := r.db.GetContext(ctx, &id, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, err
	}
	if !id.Valid {
		return uuid.Nil, nil
	}
	return id.UUID, nil
}
