package admin

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/response"
)

// OperatorClaims for operator JWT tokens
type OperatorClaims struct {
	OperatorID uuid.UUID `json:"operator_id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	jwt.RegisteredClaims
}

// OperatorContextKey for context values
type OperatorContextKey string

const (
	ContextOperatorID   OperatorContextKey = "operator_id"
	ContextOperatorRole OperatorContextKey = "operator_role"
)

// JWTService for generating operator tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates operator JWT service
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateToken creates a new operator JWT
func (s *JWTService) GenerateToken(op *Operator) (string, error) {
	claims := OperatorClaims{
		OperatorID: op.ID,
		Email:      op.Email,
		Role:       op.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   op.ID.String(),
			Issuer:    "essayons-admin",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates an operator JWT and returns claims
func (s *JWTService) ValidateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OperatorClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// AuthMiddleware creates operator authentication middleware. The operator
// account is re-checked in the database so deactivation takes effect before
// the token expires.
func AuthMiddleware(jwtSvc *JWTService, operatorSvc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtSvc.ValidateToken(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			op, err := operatorSvc.GetOperatorByID(r.Context(), claims.OperatorID)
			if err != nil || op == nil {
				response.Unauthorized(w, "Operator not found")
				return
			}
			if !op.IsActive {
				response.Forbidden(w, "Operator account is inactive")
				return
			}

			ctx := context.WithValue(r.Context(), ContextOperatorID, claims.OperatorID)
			ctx = context.WithValue(ctx, ContextOperatorRole, op.Role)
			// Shared handlers resolve the caller through the common user key.
			ctx = context.WithValue(ctx, middleware.UserIDKey, claims.OperatorID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission middleware checks for a specific operator permission
func RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(ContextOperatorRole).(Role)
			if !ok {
				response.Forbidden(w, "Permission denied")
				return
			}

			permissions, exists := RolePermissions[role]
			if !exists {
				response.Forbidden(w, "Permission denied")
				return
			}

			hasPermission := false
			for _, p := range permissions {
				if p == perm {
					hasPermission = true
					break
				}
			}
			if !hasPermission {
				response.Forbidden(w, "Permission denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetOperatorID extracts operator ID from context
func GetOperatorID(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(ContextOperatorID).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetOperatorRole extracts operator role from context
func GetOperatorRole(ctx context.Context) Role {
	role, ok := ctx.Value(ContextOperatorRole).(Role)
	if !ok {
		return ""
	}
	return role
}
