package admin

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines operator data access
type Repository interface {
	CreateOperator(ctx context.Context, op *Operator) error
	GetOperatorByID(ctx context.Context, id uuid.UUID) (*Operator, error)
	GetOperatorByEmail(ctx context.Context, email string) (*Operator, error)
	ListOperators(ctx context.Context) ([]*Operator, error)
	UpdateOperator(ctx context.Context, op *Operator) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, ip string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates operator repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOperator(ctx context.Context, op *Operator) error {
	query := `
		INSERT INTO operators (id, email, password_hash, role, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		op.ID,
		op.Email,
		op.PasswordHash,
		op.Role,
		op.Name,
		op.IsActive,
		op.CreatedAt,
		op.UpdatedAt,
	)
	return err
}

func (r *repository) GetOperatorByID(ctx context.Context, id uuid.UUID) (*Operator, error) {
	query := `SELECT * FROM operators WHERE id = $1`
	var op Operator
	if err := r.db.GetContext(ctx, &op, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

func (r *repository) GetOperatorByEmail(ctx context.Context, email string) (*Operator, error) {
	query := `SELECT * FROM operators WHERE email = $1`
	var op Operator
	if err := r.db.GetContext(ctx, &op, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

func (r *repository) ListOperators(ctx context.Context) ([]*Operator, error) {
	query := `SELECT * FROM operators ORDER BY created_at DESC`
	ops := []*Operator{}
	if err := r.db.SelectContext(ctx, &ops, query); err != nil {
		return nil, err
	}
	return ops, nil
}

func (r *repository) UpdateOperator(ctx context.Context, op *Operator) error {
	query := `
		UPDATE operators
		SET name = $2, role = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, op.ID, op.Name, op.Role, op.IsActive)
	return err
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, ip string) error {
	query := `UPDATE operators SET last_login_at = NOW(), last_login_ip = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, ip)
	return err
}
