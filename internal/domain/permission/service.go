package permission

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service handles permission administration business logic
type Service struct {
	repo Repository
}

// NewService creates permission service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateFlags(m Map) error {
	for flag := range m {
		if !flag.Valid() {
			return ErrUnknownFlag
		}
	}
	return nil
}

// CreateRole creates a tenant role with the given defaults
func (s *Service) CreateRole(ctx context.Context, orgID uuid.UUID, name string, permissions Map) (*Role, error) {
	if err := validateFlags(permissions); err != nil {
		return nil, err
	}

	now := time.Now()
	role := &Role{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Permissions:    permissions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// GetRole returns a role scoped to the organization
func (s *Service) GetRole(ctx context.Context, orgID, id uuid.UUID) (*Role, error) {
	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Cross-tenant references resolve to not-found, never to the row.
	if role == nil || role.OrganizationID != orgID {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// ListRoles lists the organization's roles
func (s *Service) ListRoles(ctx context.Context, orgID uuid.UUID) ([]*Role, error) {
	return s.repo.ListRoles(ctx, orgID)
}

// UpdateRole updates role name and defaults
func (s *Service) UpdateRole(ctx context.Context, orgID, id uuid.UUID, name string, permissions Map) (*Role, error) {
	role, err := s.GetRole(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := validateFlags(permissions); err != nil {
		return nil, err
	}

	role.Name = name
	role.Permissions = permissions
	if err := s.repo.UpdateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole removes a non-system, unreferenced role
func (s *Service) DeleteRole(ctx context.Context, orgID, id uuid.UUID) error {
	role, err := s.GetRole(ctx, orgID, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	count, err := s.repo.CountUsersWithRole(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleInUse
	}
	return s.repo.DeleteRole(ctx, orgID, id)
}

// CreateGroup creates a tenant user group
func (s *Service) CreateGroup(ctx context.Context, orgID uuid.UUID, name string, permissions Map) (*UserGroup, error) {
	if err := validateFlags(permissions); err != nil {
		return nil, err
	}

	now := time.Now()
	group := &UserGroup{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Permissions:    permissions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroup returns a group scoped to the organization
func (s *Service) GetGroup(ctx context.Context, orgID, id uuid.UUID) (*UserGroup, error) {
	group, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil || group.OrganizationID != orgID {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// ListGroups lists the organization's groups
func (s *Service) ListGroups(ctx context.Context, orgID uuid.UUID) ([]*UserGroup, error) {
	return s.repo.ListGroups(ctx, orgID)
}

// UpdateGroup updates group name and grants
func (s *Service) UpdateGroup(ctx context.Context, orgID, id uuid.UUID, name string, permissions Map) (*UserGroup, error) {
	group, err := s.GetGroup(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := validateFlags(permissions); err != nil {
		return nil, err
	}

	group.Name = name
	group.Permissions = permissions
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group and its memberships
func (s *Service) DeleteGroup(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.GetGroup(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.DeleteGroup(ctx, orgID, id)
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, orgID, groupID, userID, assignedByID uuid.UUID) error {
	if _, err := s.GetGroup(ctx, orgID, groupID); err != nil {
		return err
	}
	m := &GroupMembership{
		ID:           uuid.New(),
		UserID:       userID,
		GroupID:      groupID,
		AssignedByID: assignedByID,
		CreatedAt:    time.Now(),
	}
	return s.repo.AddMember(ctx, m)
}

// RemoveMember removes a user from a group
func (s *Service) RemoveMember(ctx context.Context, orgID, groupID, userID uuid.UUID) error {
	if _, err := s.GetGroup(ctx, orgID, groupID); err != nil {
		return err
	}
	return s.repo.RemoveMember(ctx, groupID, userID)
}

// SetOverride installs or replaces the user's partial override
func (s *Service) SetOverride(ctx context.Context, userID, assignedByID uuid.UUID, permissions Map) (*Override, error) {
	if err := validateFlags(permissions); err != nil {
		return nil, err
	}

	now := time.Now()
	o := &Override{
		ID:           uuid.New(),
		UserID:       userID,
		Permissions:  permissions,
		AssignedByID: assignedByID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertOverride(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ClearOverride removes the user's override
func (s *Service) ClearOverride(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteOverride(ctx, userID)
}
