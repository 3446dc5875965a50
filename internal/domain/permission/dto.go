package permission

import (
	"time"

	"github.com/google/uuid"
)

// CreateRoleRequest for POST /permissions/roles
type CreateRoleRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// UpdateRoleRequest for PUT /permissions/roles/{id}
type UpdateRoleRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// CreateGroupRequest for POST /permissions/groups
type CreateGroupRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// UpdateGroupRequest for PUT /permissions/groups/{id}
type UpdateGroupRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// AddMemberRequest for POST /permissions/groups/{id}/members
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// SetOverrideRequest for PUT /permissions/overrides/{userId}
type SetOverrideRequest struct {
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// RoleResponse is the API shape of a role
type RoleResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions"`
	IsSystem    bool            `json:"is_system"`
	CreatedAt   time.Time       `json:"created_at"`
}

// GroupResponse is the API shape of a user group
type GroupResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OverrideResponse is the API shape of a per-user override
type OverrideResponse struct {
	UserID      uuid.UUID       `json:"user_id"`
	Permissions map[string]bool `json:"permissions"`
	AssignedBy  uuid.UUID       `json:"assigned_by"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ResolvedResponse is the effective capability set for a user
type ResolvedResponse struct {
	UserID      uuid.UUID       `json:"user_id"`
	Permissions map[string]bool `json:"permissions"`
}

func mapFromRequest(raw map[string]bool) Map {
	m := make(Map, len(raw))
	for name, v := range raw {
		m[Flag(name)] = v
	}
	return m
}

func mapToResponse(m Map) map[string]bool {
	out := make(map[string]bool, len(m))
	for flag, v := range m {
		out[string(flag)] = v
	}
	return out
}

// RoleResponseFromEntity converts entity to response
func RoleResponseFromEntity(role *Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Permissions: mapToResponse(role.Permissions),
		IsSystem:    role.IsSystem,
		CreatedAt:   role.CreatedAt,
	}
}

// GroupResponseFromEntity converts entity to response
func GroupResponseFromEntity(group *UserGroup) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Permissions: mapToResponse(group.Permissions),
		CreatedAt:   group.CreatedAt,
	}
}
