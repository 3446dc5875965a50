package support

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/metrics"
	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/session"
	"github.com/essayons/essayons-api/internal/pkg/validator"
)

// Handler handles support session HTTP requests
type Handler struct {
	service  *Service
	tokens   *TokenService
	sessions *session.Store
	audit    *AuditLogger
}

// NewHandler creates support handler
func NewHandler(service *Service, tokens *TokenService, sessions *session.Store, audit *AuditLogger) *Handler {
	return &Handler{
		service:  service,
		tokens:   tokens,
		sessions: sessions,
		audit:    audit,
	}
}

// Create handles POST /support/session
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
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

	operatorID := middleware.GetUserID(r.Context())
	created, err := h.service.Create(r.Context(), operatorID, CreateParams{
		OrganizationID:  orgID,
		SessionType:     SessionType(req.SessionType),
		Reason:          req.Reason,
		DurationMinutes: req.DurationMinutes,
		AccessScopes:    req.AccessScopes,
		IPAddress:       middleware.ClientIP(r),
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		switch err {
		case ErrInvalidSessionType, ErrReasonTooShort, ErrInvalidDuration:
			response.BadRequest(w, err.Error())
		case ErrOrganizationNotFound:
			response.NotFound(w, "Organization not found")
		default:
			log.Error().Err(err).Msg("Failed to create support session")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, SessionResponseFromEntity(created))
}

// ListMy handles GET /support/session
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	operatorID := middleware.GetUserID(r.Context())
	sessions, err := h.service.ListByOperator(r.Context(), operatorID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list support sessions")
		response.InternalError(w)
		return
	}

	items := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, SessionResponseFromEntity(s))
	}
	response.OK(w, items)
}

// GetByID handles GET /support/session/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		if err == ErrSessionNotFound {
			response.NotFound(w, "Session not found")
		} else {
			log.Error().Err(err).Msg("Failed to get support session")
			response.InternalError(w)
		}
		return
	}

	if found.SuperAdminUserID != middleware.GetUserID(r.Context()) {
		response.Forbidden(w, "Not the session owner")
		return
	}

	response.OK(w, SessionResponseFromEntity(found))
}

// ToggleMode handles PATCH /support/session/{id}/toggle-mode
func (h *Handler) ToggleMode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	var req ToggleModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	operatorID := middleware.GetUserID(r.Context())
	updated, err := h.service.ToggleMode(r.Context(), operatorID, id, *req.SupportMode, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		switch err {
		case ErrSessionNotFound:
			response.NotFound(w, "Session not found")
		case ErrNotSessionOwner:
			response.Forbidden(w, "Not the session owner")
		case ErrSessionExpired:
			response.Forbidden(w, "Session has expired")
		default:
			log.Error().Err(err).Msg("Failed to toggle session mode")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, SessionResponseFromEntity(updated))
}

// End handles PATCH /support/session/{id}/end
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	operatorID := middleware.GetUserID(r.Context())
	if err := h.service.End(r.Context(), operatorID, id, middleware.ClientIP(r), r.UserAgent()); err != nil {
		switch err {
		case ErrSessionNotFound:
			response.NotFound(w, "Session not found")
		case ErrNotSessionOwner:
			response.Forbidden(w, "Not the session owner")
		default:
			log.Error().Err(err).Msg("Failed to end support session")
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// MintToken handles POST /support/impersonation/token
func (h *Handler) MintToken(w http.ResponseWriter, r *http.Request) {
	var req MintTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		response.BadRequest(w, "Invalid session ID")
		return
	}

	operatorID := middleware.GetUserID(r.Context())

	// Ownership and liveness are established before the org/mode
	// cross-check so a mismatched request neither mints a token nor
	// leaves a mint audit record, and a non-owner learns nothing from
	// the mismatch responses.
	owned, err := h.service.ownedLiveSession(r.Context(), operatorID, sessionID)
	if err != nil {
		writeMintError(w, err)
		return
	}
	if req.OrganizationID != "" && req.OrganizationID != owned.OrganizationID.String() {
		response.Forbidden(w, "Organization does not match the session")
		return
	}
	if req.Mode != "" && req.Mode != owned.SessionType.Mode() {
		response.Forbidden(w, "Mode does not match the session")
		return
	}

	token, minted, err := h.tokens.Mint(r.Context(), operatorID, sessionID, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		writeMintError(w, err)
		return
	}

	response.OK(w, TokenResponse{
		Token:     token,
		ExpiresIn: int(TokenTTL.Seconds()),
		Mode:      minted.SessionType.Mode(),
	})
}

func writeMintError(w http.ResponseWriter, err error) {
	switch err {
	case ErrSessionNotFound:
		response.NotFound(w, "Session not found")
	case ErrNotSessionOwner:
		response.Forbidden(w, "Not the session owner")
	case ErrSessionInactive, ErrSessionExpired:
		response.Forbidden(w, "Session is not active")
	default:
		log.Error().Err(err).Msg("Failed to mint impersonation token")
		response.InternalError(w)
	}
}

// Bind handles POST /support/impersonation/bind. The token is the handoff
// credential; the underlying session is re-checked in storage before any
// state is bound, and the browser session identifier is regenerated.
func (h *Handler) Bind(w http.ResponseWriter, r *http.Request) {
	var req BindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	payload, err := h.tokens.Validate(req.Token)
	if err != nil {
		response.Forbidden(w, "Invalid or expired token")
		return
	}

	live, active, err := h.service.CurrentState(r.Context(), payload.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check support session state")
		response.InternalError(w)
		return
	}
	if live == nil || !active {
		response.Forbidden(w, "Invalid or expired token")
		return
	}

	boundAt := time.Now()
	imp := &session.Impersonation{
		SessionID:      live.ID,
		OrganizationID: live.OrganizationID,
		Mode:           live.SessionType.Mode(),
		Scopes:         live.AccessScopes,
		BoundAt:        boundAt,
	}

	var data *session.Data
	var oldID string
	if cookie, cerr := r.Cookie(middleware.SessionCookieName); cerr == nil {
		if existing, gerr := h.sessions.Get(r.Context(), cookie.Value); gerr == nil {
			data = existing
			oldID = cookie.Value
		}
	}
	if data == nil {
		data = &session.Data{
			UserID:    live.SuperAdminUserID,
			CreatedAt: boundAt,
		}
	}
	data.Impersonation = imp

	var newID string
	if oldID != "" {
		newID, err = h.sessions.Regenerate(r.Context(), oldID, data)
	} else {
		newID, err = h.sessions.Create(r.Context(), data)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to bind impersonation session")
		response.InternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    newID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	metrics.SupportSessionEvents.WithLabelValues(ActionSessionBound).Inc()
	h.audit.Record(r.Context(), Entry{
		SessionID:        live.ID,
		SuperAdminUserID: live.SuperAdminUserID,
		OrganizationID:   live.OrganizationID,
		Action:           ActionSessionBound,
		Description:      "Impersonation token bound to browser session",
		AccessLevel:      imp.Mode,
		IPAddress:        middleware.ClientIP(r),
		UserAgent:        r.UserAgent(),
	})

	response.OK(w, BindResponse{
		SessionID:      live.ID,
		OrganizationID: live.OrganizationID,
		Mode:           imp.Mode,
		BoundAt:        boundAt,
	})
}

// ListAuditLogs handles GET /support/audit-logs
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter := AuditFilter{Limit: 100}

	if raw := r.URL.Query().Get("organization_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid organization ID")
			return
		}
		filter.OrganizationID = id
	}
	if raw := r.URL.Query().Get("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid session ID")
			return
		}
		filter.SessionID = id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		filter.Limit = n
	}

	logs, err := h.audit.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list audit logs")
		response.InternalError(w)
		return
	}

	items := make([]AuditLogResponse, 0, len(logs))
	for _, entry := range logs {
		items = append(items, auditLogResponseFromEntity(entry))
	}
	response.OK(w, items)
}

func auditLogResponseFromEntity(e *AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:               e.ID,
		SessionID:        e.SessionID,
		SuperAdminUserID: e.SuperAdminUserID,
		OrganizationID:   e.OrganizationID,
		Action:           e.Action,
		Description:      e.Description,
		AccessLevel:      e.AccessLevel,
		IPAddress:        e.IPAddress,
		UserAgent:        e.UserAgent,
		CreatedAt:        e.CreatedAt,
	}
	if len(e.Details) > 0 {
		_ = json.Unmarshal(e.Details, &resp.Details)
	}
	return resp
}
