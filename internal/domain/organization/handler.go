package organization

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/validator"
)

// DefaultOrgSetter persists the user's default organization choice.
type DefaultOrgSetter interface {
	SetDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error
}

// Handler handles organization HTTP requests
type Handler struct {
	service    *Service
	defaultOrg DefaultOrgSetter
}

// NewHandler creates organization handler
func NewHandler(service *Service, defaultOrg DefaultOrgSetter) *Handler {
	return &Handler{service: service, defaultOrg: defaultOrg}
}

// Create handles POST /organizations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	org, err := h.service.Create(r.Context(), req.Name, middleware.GetUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create organization")
		response.InternalError(w)
		return
	}

	response.Created(w, OrganizationResponseFromEntity(org))
}

// ListMine handles GET /organizations
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list organizations")
		response.InternalError(w)
		return
	}

	items := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		resp := OrganizationResponseFromEntity(org)
		sort.Strings(resp.EnabledFeatures)
		items = append(items, resp)
	}
	response.OK(w, items)
}

// Current handles GET /organizations/current
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	tc := TenantFromContext(r.Context())
	if tc == nil {
		response.Forbidden(w, "No organization context")
		return
	}

	resp := OrganizationResponseFromEntity(tc.Organization)
	sort.Strings(resp.EnabledFeatures)
	response.OK(w, CurrentResponse{
		Organization: resp,
		OrgRole:      string(tc.OrgRole),
	})
}

// SetDefault handles PUT /organizations/default
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	var req SetDefaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		response.BadRequest(w, "Invalid organization ID")
		return
	}

	userID := middleware.GetUserID(r.Context())

	// The choice must point at an organization the user actively belongs to.
	if _, err := h.service.ResolveTenant(r.Context(), userID, orgID); err != nil {
		switch err {
		case ErrNoActiveMembership, ErrOrganizationNotFound:
			response.Forbidden(w, "Not a member of this organization")
		case ErrOrganizationSuspended:
			response.Forbidden(w, "Organization is suspended")
		default:
			log.Error().Err(err).Msg("Failed to verify membership")
			response.InternalError(w)
		}
		return
	}

	if err := h.defaultOrg.SetDefaultOrganization(r.Context(), userID, orgID); err != nil {
		log.Error().Err(err).Msg("Failed to set default organization")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}
