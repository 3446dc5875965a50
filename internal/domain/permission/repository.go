package permission

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines permission data access
type Repository interface {
	// Roles
	CreateRole(ctx context.Context, role *Role) error
	GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetRoleByName(ctx context.Context, orgID uuid.UUID, name string) (*Role, error)
	ListRoles(ctx context.Context, orgID uuid.UUID) ([]*Role, error)
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, orgID, id uuid.UUID) error
	CountUsersWithRole(ctx context.Context, roleID uuid.UUID) (int, error)

	// Resolution inputs
	GetUserRole(ctx context.Context, userID uuid.UUID) (*Role, error)
	ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]*UserGroup, error)
	GetOverride(ctx context.Context, userID uuid.UUID) (*Override, error)

	// Groups
	CreateGroup(ctx context.Context, group *UserGroup) error
	GetGroupByID(ctx context.Context, id uuid.UUID) (*UserGroup, error)
	ListGroups(ctx context.Context, orgID uuid.UUID) ([]*UserGroup, error)
	UpdateGroup(ctx context.Context, group *UserGroup) error
	DeleteGroup(ctx context.Context, orgID, id uuid.UUID) error
	AddMember(ctx context.Context, m *GroupMembership) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	// Overrides
	UpsertOverride(ctx context.Context, o *Override) error
	DeleteOverride(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates permission repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRole(ctx context.Context, role *Role) error {
	query := `
		INSERT INTO roles (id, organization_id, name, permissions, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		role.ID, role.OrganizationID, role.Name, role.Permissions, role.IsSystem,
		role.CreatedAt, role.UpdatedAt,
	)
	return err
}

func (r *repository) GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	query := `SELECT * FROM roles WHERE id = $1`
	var role Role
	err := r.db.GetContext(ctx, &role, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) GetRoleByName(ctx context.Context, orgID uuid.UUID, name string) (*Role, error) {
	query := `SELECT * FROM roles WHERE organization_id = $1 AND name = $2`
	var role Role
	err := r.db.GetContext(ctx, &role, query, orgID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) ListRoles(ctx context.Context, orgID uuid.UUID) ([]*Role, error) {
	query := `SELECT * FROM roles WHERE organization_id = $1 ORDER BY name`
	var roles []*Role
	if err := r.db.SelectContext(ctx, &roles, query, orgID); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *repository) UpdateRole(ctx context.Context, role *Role) error {
	query := `
		UPDATE roles SET name = $3, permissions = $4, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, role.ID, role.OrganizationID, role.Name, role.Permissions)
	return err
}

func (r *repository) DeleteRole(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM roles WHERE id = $1 AND organization_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, orgID)
	return err
}

func (r *repository) CountUsersWithRole(ctx context.Context, roleID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role_id = $1`, roleID)
	return count, err
}

func (r *repository) GetUserRole(ctx context.Context, userID uuid.UUID) (*Role, error) {
	query := `
		SELECT r.* FROM roles r
		JOIN users u ON u.role_id = r.id
		WHERE u.id = $1
	`
	var role Role
	err := r.db.GetContext(ctx, &role, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *repository) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]*UserGroup, error) {
	query := `
		SELECT g.* FROM user_groups g
		JOIN group_memberships gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
	`
	var groups []*UserGroup
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repository) GetOverride(ctx context.Context, userID uuid.UUID) (*Override, error) {
	query := `SELECT * FROM permission_overrides WHERE user_id = $1`
	var o Override
	err := r.db.GetContext(ctx, &o, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) CreateGroup(ctx context.Context, group *UserGroup) error {
	query := `
		INSERT INTO user_groups (id, organization_id, name, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		group.ID, group.OrganizationID, group.Name, group.Permissions,
		group.CreatedAt, group.UpdatedAt,
	)
	return err
}

func (r *repository) GetGroupByID(ctx context.Context, id uuid.UUID) (*UserGroup, error) {
	query := `SELECT * FROM user_groups WHERE id = $1`
	var group UserGroup
	err := r.db.GetContext(ctx, &group, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) ListGroups(ctx context.Context, orgID uuid.UUID) ([]*UserGroup, error) {
	query := `SELECT * FROM user_groups WHERE organization_id = $1 ORDER BY name`
	var groups []*UserGroup
	if err := r.db.SelectContext(ctx, &groups, query, orgID); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repository) UpdateGroup(ctx context.Context, group *UserGroup) error {
	query := `
		UPDATE user_groups SET name = $3, permissions = $4, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, group.ID, group.OrganizationID, group.Name, group.Permissions)
	return err
}

func (r *repository) DeleteGroup(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM user_groups WHERE id = $1 AND organization_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, orgID)
	return err
}

func (r *repository) AddMember(ctx context.Context, m *GroupMembership) error {
	query := `
		INSERT INTO group_memberships (id, user_id, group_id, assigned_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.UserID, m.GroupID, m.AssignedByID, m.CreatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrAlreadyMember
	}
	return err
}

func (r *repository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	query := `DELETE FROM group_memberships WHERE group_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMembershipMissing
	}
	return nil
}

func (r *repository) UpsertOverride(ctx context.Context, o *Override) error {
	query := `
		INSERT INTO permission_overrides (id, user_id, permissions, assigned_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			permissions = EXCLUDED.permissions,
			assigned_by_id = EXCLUDED.assigned_by_id,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, o.ID, o.UserID, o.Permissions, o.AssignedByID, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *repository) DeleteOverride(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permission_overrides WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOverrideNotFound
	}
	return nil
}
