package support

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/session"
)

func newOperatorFixture(t *testing.T) (http.Handler, *fakeRepo, *fakeAuditRepo, *Session, uuid.UUID) {
	t.Helper()

	repo := newFakeRepo()
	auditRepo := &fakeAuditRepo{}
	audit := NewAuditLogger(auditRepo)
	orgID := uuid.New()
	operator := uuid.New()
	svc := NewService(repo, &fakeOrgs{known: map[uuid.UUID]bool{orgID: true}}, audit)
	tokens := NewTokenService("test-signing-secret", repo, audit)
	h := NewHandler(svc, tokens, session.NewStore(nil, time.Hour), audit)

	live := &Session{
		ID:               uuid.New(),
		SuperAdminUserID: operator,
		OrganizationID:   orgID,
		SessionType:      SessionReadOnly,
		Reason:           "Investigating ticket #4821",
		IsActive:         true,
		CreatedAt:        time.Now(),
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	repo.sessions[live.ID] = live

	operatorAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	passthrough := func(next http.Handler) http.Handler { return next }

	return h.Routes(operatorAuth, passthrough), repo, auditRepo, live, operator
}

func TestMintToken_MismatchedOrgMintsNothing(t *testing.T) {
	router, _, auditRepo, live, _ := newOperatorFixture(t)

	body := `{"session_id":"` + live.ID.String() + `","organization_id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/impersonation/token", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rr.Code)
	}
	if len(auditRepo.entries) != 0 {
		t.Errorf("mismatched request left %d audit records, want none", len(auditRepo.entries))
	}
}

func TestMintToken_MismatchedModeMintsNothing(t *testing.T) {
	router, _, auditRepo, live, _ := newOperatorFixture(t)

	body := `{"session_id":"` + live.ID.String() + `","mode":"write"}`
	req := httptest.NewRequest(http.MethodPost, "/impersonation/token", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rr.Code)
	}
	if len(auditRepo.entries) != 0 {
		t.Errorf("mismatched request left %d audit records, want none", len(auditRepo.entries))
	}
}

func TestMintToken_ExpiredSessionForbidden(t *testing.T) {
	router, repo, _, live, _ := newOperatorFixture(t)
	repo.sessions[live.ID].ExpiresAt = time.Now().Add(-time.Minute)

	body := `{"session_id":"` + live.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/impersonation/token", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rr.Code)
	}
}

func TestToggleMode_ExpiredSessionForbidden(t *testing.T) {
	router, repo, _, live, _ := newOperatorFixture(t)
	repo.sessions[live.ID].ExpiresAt = time.Now().Add(-time.Minute)

	body := `{"support_mode":true}`
	req := httptest.NewRequest(http.MethodPatch, "/session/"+live.ID.String()+"/toggle-mode", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rr.Code)
	}
}
