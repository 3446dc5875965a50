package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/domain/user"
	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/jwt"
	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/session"
	"github.com/essayons/essayons-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service  *Service
	sessions *session.Store
	jwtSvc   *jwt.Service
}

// NewHandler creates auth handler
func NewHandler(service *Service, sessions *session.Store, jwtSvc *jwt.Service) *Handler {
	return &Handler{service: service, sessions: sessions, jwtSvc: jwtSvc}
}

func userResponseFromEntity(u *user.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
	if u.DefaultOrganizationID.Valid {
		id := u.DefaultOrganizationID.UUID
		resp.DefaultOrganizationID = &id
	}
	return resp
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	u, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch err {
		case ErrEmailTaken:
			response.Conflict(w, "Email already in use")
		default:
			log.Error().Err(err).Msg("Failed to register user")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, userResponseFromEntity(u))
}

// Login handles POST /auth/login. On success a server-side session is
// created and its identifier set as a cookie; the JWT in the body serves
// API clients that do not use cookies.
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

	u, err := h.service.Login(r.Context(), req.Email, req.Password, middleware.ClientIP(r))
	if err != nil {
		switch err {
		case ErrTooManyAttempts:
			response.TooManyRequests(w, "Too many login attempts", 900)
		case ErrAccountInactive:
			response.Forbidden(w, "Account is inactive")
		default:
			response.Unauthorized(w, "Invalid email or password")
		}
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), &session.Data{
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		response.InternalError(w)
		return
	}

	token, err := h.jwtSvc.GenerateToken(u.ID, u.Email, jwt.ScopeTenant)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate token")
		response.InternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	response.OK(w, LoginResponse{
		Token: token,
		User:  userResponseFromEntity(u),
	})
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetSessionID(r.Context()); id != "" {
		if err := h.sessions.Delete(r.Context(), id); err != nil {
			log.Error().Err(err).Msg("Failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	response.NoContent(w)
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if err == user.ErrUserNotFound {
			response.Unauthorized(w, "User not found")
		} else {
			log.Error().Err(err).Msg("Failed to load user")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, userResponseFromEntity(u))
}
