package project

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

// Handler handles project HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates project handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func orgID(r *http.Request) uuid.UUID {
	if tc := organization.TenantFromContext(r.Context()); tc != nil {
		return tc.OrganizationID
	}
	return uuid.Nil
}

// Create handles POST /projects
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	p, err := h.service.Create(r.Context(), orgID(r), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create project")
		response.InternalError(w)
		return
	}

	response.Created(w, p)
}

// List handles GET /projects
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context(), orgID(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list projects")
		response.InternalError(w)
		return
	}
	response.OK(w, projects)
}

// GetByID handles GET /projects/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	p, err := h.service.GetByID(r.Context(), orgID(r), id)
	if err != nil {
		if err == ErrProjectNotFound {
			response.NotFound(w, "Project not found")
		} else {
			log.Error().Err(err).Msg("Failed to get project")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, p)
}

// Update handles PUT /projects/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	p, err := h.service.Update(r.Context(), orgID(r), id, &req)
	if err != nil {
		if err == ErrProjectNotFound {
			response.NotFound(w, "Project not found")
		} else {
			log.Error().Err(err).Msg("Failed to update project")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, p)
}

// Delete handles DELETE /projects/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	if err := h.service.Delete(r.Context(), orgID(r), id); err != nil {
		if err == ErrProjectNotFound {
			response.NotFound(w, "Project not found")
		} else {
			log.Error().Err(err).Msg("Failed to delete project")
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}
