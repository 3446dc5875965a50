package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRequirePermission_ForbiddenWithoutRole(t *testing.T) {
	mw := RequirePermission(PermCreateSupportSessions)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAuthMiddleware_UnauthorizedWithoutToken(t *testing.T) {
	jwtSvc := NewJWTService("test-secret", time.Hour)
	mw := AuthMiddleware(jwtSvc, nil)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	jwtSvc := NewJWTService("test-secret", time.Hour)
	op := &Operator{ID: uuid.New(), Email: "ops@example.com", Role: RoleSupport}

	token, err := jwtSvc.GenerateToken(op)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := jwtSvc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.OperatorID != op.ID || claims.Role != RoleSupport {
		t.Error("claims do not round-trip")
	}

	other := NewJWTService("another-secret", time.Hour)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret must not validate")
	}
}

func TestRoleHierarchy(t *testing.T) {
	if !CanManage(RoleSuperAdmin, RoleSupport) {
		t.Error("super_admin should manage support")
	}
	if CanManage(RoleSupport, RoleSuperAdmin) {
		t.Error("support must not manage super_admin")
	}
	if CanManage(RoleSupport, RoleSupport) {
		t.Error("equal roles must not manage each other")
	}
}
