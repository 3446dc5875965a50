package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/validator"
)

// Handler handles operator HTTP requests
type Handler struct {
	service *Service
	jwtSvc  *JWTService
}

// NewHandler creates operator handler
func NewHandler(service *Service, jwtSvc *JWTService) *Handler {
	return &Handler{service: service, jwtSvc: jwtSvc}
}

// Login handles POST /admin/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	op, err := h.service.Login(r.Context(), req.Email, req.Password, middleware.ClientIP(r))
	if err != nil {
		switch err {
		case ErrTooManyAttempts:
			response.TooManyRequests(w, "Too many login attempts", 900)
		case ErrOperatorInactive:
			response.Forbidden(w, "Account is inactive")
		default:
			response.Unauthorized(w, "Invalid email or password")
		}
		return
	}

	token, err := h.jwtSvc.GenerateToken(op)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate operator token")
		response.InternalError(w)
		return
	}

	response.OK(w, LoginResponse{
		Token:    token,
		Operator: OperatorResponseFromEntity(op),
	})
}

// Me handles GET /admin/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	op, err := h.service.GetOperatorByID(r.Context(), GetOperatorID(r.Context()))
	if err != nil {
		response.Unauthorized(w, "Operator not found")
		return
	}
	response.OK(w, OperatorResponseFromEntity(op))
}

// List handles GET /admin/operators
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ops, err := h.service.ListOperators(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list operators")
		response.InternalError(w)
		return
	}

	items := make([]OperatorResponse, 0, len(ops))
	for _, op := range ops {
		items = append(items, OperatorResponseFromEntity(op))
	}
	response.OK(w, items)
}

// Create handles POST /admin/operators
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	op, err := h.service.CreateOperator(r.Context(), GetOperatorID(r.Context()), &req)
	if err != nil {
		switch err {
		case ErrEmailTaken:
			response.Conflict(w, "Email already in use")
		default:
			log.Error().Err(err).Msg("Failed to create operator")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, OperatorResponseFromEntity(op))
}

// Update handles PATCH /admin/operators/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid operator ID")
		return
	}

	var req UpdateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	op, err := h.service.UpdateOperator(r.Context(), GetOperatorID(r.Context()), id, &req)
	if err != nil {
		switch err {
		case ErrOperatorNotFound:
			response.NotFound(w, "Operator not found")
		case ErrCannotManageRole:
			response.Forbidden(w, "Cannot manage operator with equal or higher role")
		case ErrCannotDeleteSelf:
			response.Forbidden(w, "Cannot deactivate your own account")
		default:
			log.Error().Err(err).Msg("Failed to update operator")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, OperatorResponseFromEntity(op))
}
