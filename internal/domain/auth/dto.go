package auth

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the API shape of the authenticated user
type UserResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	DefaultOrganizationID *uuid.UUID `json:"default_organization_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// LoginResponse carries the bearer token for API clients; browser clients
// rely on the session cookie set alongside it.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
