package support

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/session"
)

func newBindFixture(t *testing.T) (*Handler, *fakeRepo, *session.Store, *Session, uuid.UUID) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewStore(client, time.Hour)

	repo := newFakeRepo()
	audit := NewAuditLogger(&fakeAuditRepo{})
	orgID := uuid.New()
	operator := uuid.New()
	svc := NewService(repo, &fakeOrgs{known: map[uuid.UUID]bool{orgID: true}}, audit)
	tokens := NewTokenService("test-signing-secret", repo, audit)

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

	return NewHandler(svc, tokens, sessions, audit), repo, sessions, live, operator
}

func postBind(t *testing.T, h *Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"token":` + jsonString(token) + `}`
	req := httptest.NewRequest(http.MethodPost, "/impersonation/bind", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Bind(rr, req)
	return rr
}

func jsonString(s string) string {
	raw, _ := json.Marshal(s)
	return string(raw)
}

func TestBind_SetsRegeneratedSessionCookie(t *testing.T) {
	h, _, sessions, live, operator := newBindFixture(t)

	token, _, err := h.tokens.Mint(context.Background(), operator, live.ID, "", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	rr := postBind(t, h, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("bind: code = %d, body = %s", rr.Code, rr.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("bind must set the session cookie")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be http-only")
	}

	data, err := sessions.Get(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if data.Impersonation == nil {
		t.Fatal("bound session must carry impersonation state")
	}
	if data.Impersonation.SessionID != live.ID {
		t.Error("bound to the wrong support session")
	}
	if data.Impersonation.Mode != ModeRead {
		t.Errorf("mode = %q, want %q", data.Impersonation.Mode, ModeRead)
	}
}

func TestBind_RejectsTokenForEndedSession(t *testing.T) {
	h, repo, _, live, operator := newBindFixture(t)

	token, _, err := h.tokens.Mint(context.Background(), operator, live.ID, "", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Session revoked after mint; the token alone must not grant access.
	repo.sessions[live.ID].IsActive = false

	rr := postBind(t, h, token)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rr.Code)
	}
}

func TestBind_RejectsGarbageToken(t *testing.T) {
	h, _, _, _, _ := newBindFixture(t)

	rr := postBind(t, h, "not.a-real-token")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403", rr.Code)
	}
}
