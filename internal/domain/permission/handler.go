package permission

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/domain/organization"
	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/validator"
)

// Handler handles permission HTTP requests
type Handler struct {
	service  *Service
	resolver *Resolver
}

// NewHandler creates permission handler
func NewHandler(service *Service, resolver *Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

func tenantID(r *http.Request) uuid.UUID {
	if tc := organization.TenantFromContext(r.Context()); tc != nil {
		return tc.OrganizationID
	}
	return uuid.Nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrRoleNotFound:
		response.NotFound(w, "Role not found")
	case ErrGroupNotFound:
		response.NotFound(w, "Group not found")
	case ErrOverrideNotFound:
		response.NotFound(w, "Override not found")
	case ErrUnknownFlag:
		response.BadRequest(w, "Unknown permission flag")
	case ErrSystemRole:
		response.Forbidden(w, "System roles cannot be modified")
	case ErrRoleInUse:
		response.Conflict(w, "Role is assigned to users")
	case ErrAlreadyMember:
		response.Conflict(w, "User is already a group member")
	case ErrMembershipMissing:
		response.NotFound(w, "User is not a group member")
	default:
		log.Error().Err(err).Msg("Permission operation failed")
		response.InternalError(w)
	}
}

// --- Roles ---

// CreateRole handles POST /permissions/roles
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	role, err := h.service.CreateRole(r.Context(), tenantID(r), req.Name, mapFromRequest(req.Permissions))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, RoleResponseFromEntity(role))
}

// ListRoles handles GET /permissions/roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context(), tenantID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	items := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, RoleResponseFromEntity(role))
	}
	response.OK(w, items)
}

// GetRole handles GET /permissions/roles/{id}
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid role ID")
		return
	}

	role, err := h.service.GetRole(r.Context(), tenantID(r), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, RoleResponseFromEntity(role))
}

// UpdateRole handles PUT /permissions/roles/{id}
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid role ID")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	role, err := h.service.UpdateRole(r.Context(), tenantID(r), id, req.Name, mapFromRequest(req.Permissions))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, RoleResponseFromEntity(role))
}

// DeleteRole handles DELETE /permissions/roles/{id}
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid role ID")
		return
	}

	if err := h.service.DeleteRole(r.Context(), tenantID(r), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// --- Groups ---

// CreateGroup handles POST /permissions/groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	group, err := h.service.CreateGroup(r.Context(), tenantID(r), req.Name, mapFromRequest(req.Permissions))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, GroupResponseFromEntity(group))
}

// ListGroups handles GET /permissions/groups
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context(), tenantID(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	items := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		items = append(items, GroupResponseFromEntity(group))
	}
	response.OK(w, items)
}

// UpdateGroup handles PUT /permissions/groups/{id}
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	group, err := h.service.UpdateGroup(r.Context(), tenantID(r), id, req.Name, mapFromRequest(req.Permissions))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, GroupResponseFromEntity(group))
}

// DeleteGroup handles DELETE /permissions/groups/{id}
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if err := h.service.DeleteGroup(r.Context(), tenantID(r), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// AddMember handles POST /permissions/groups/{id}/members
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.AddMember(r.Context(), tenantID(r), groupID, userID, middleware.GetUserID(r.Context())); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// RemoveMember handles DELETE /permissions/groups/{id}/members/{userId}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), tenantID(r), groupID, userID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// --- Overrides ---

// SetOverride handles PUT /permissions/overrides/{userId}
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req SetOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	override, err := h.service.SetOverride(r.Context(), userID, middleware.GetUserID(r.Context()), mapFromRequest(req.Permissions))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, OverrideResponse{
		UserID:      override.UserID,
		Permissions: mapToResponse(override.Permissions),
		AssignedBy:  override.AssignedByID,
		UpdatedAt:   override.UpdatedAt,
	})
}

// ClearOverride handles DELETE /permissions/overrides/{userId}
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.ClearOverride(r.Context(), userID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// --- Resolution ---

// ResolveMine handles GET /permissions/me
func (h *Handler) ResolveMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var set Set
	var err error
	if imp := middleware.GetImpersonation(r.Context()); imp != nil {
		set, err = h.resolver.ResolveImpersonated(r.Context(), imp.SessionID, imp.Scopes)
	} else {
		set, err = h.resolver.Resolve(r.Context(), userID)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve permissions")
		response.InternalError(w)
		return
	}

	response.OK(w, ResolvedResponse{
		UserID:      userID,
		Permissions: mapToResponse(Map(set)),
	})
}
