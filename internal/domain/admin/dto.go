package admin

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest for POST /admin/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse with operator token
type LoginResponse struct {
	Token    string           `json:"token"`
	Operator OperatorResponse `json:"operator"`
}

// CreateOperatorRequest for POST /admin/operators
type CreateOperatorRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Role     string `json:"role" validate:"required,oneof=super_admin support"`
}

// UpdateOperatorRequest for PATCH /admin/operators/{id}
type UpdateOperatorRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=super_admin support"`
	IsActive *bool   `json:"is_active"`
}

// OperatorResponse is the API shape of an operator
type OperatorResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// OperatorResponseFromEntity converts entity to response
func OperatorResponseFromEntity(op *Operator) OperatorResponse {
	resp := OperatorResponse{
		ID:        op.ID,
		Email:     op.Email,
		Name:      op.Name,
		Role:      string(op.Role),
		IsActive:  op.IsActive,
		CreatedAt: op.CreatedAt,
	}
	if op.LastLoginAt.Valid {
		t := op.LastLoginAt.Time
		resp.LastLoginAt = &t
	}
	return resp
}
