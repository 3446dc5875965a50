package support

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTokenFixture(t *testing.T) (*TokenService, *fakeRepo, *Session, uuid.UUID) {
	t.Helper()
	repo := newFakeRepo()
	audit := &fakeAuditRepo{}
	operator := uuid.New()

	session := &Session{
		ID:               uuid.New(),
		SuperAdminUserID: operator,
		OrganizationID:   uuid.New(),
		SessionType:      SessionReadOnly,
		Reason:           "Investigating ticket #4821",
		IsActive:         true,
		CreatedAt:        time.Now(),
		ExpiresAt:        time.Now().Add(time.Hour),
	}
	repo.sessions[session.ID] = session

	svc := NewTokenService("test-signing-secret", repo, NewAuditLogger(audit))
	return svc, repo, session, operator
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _, session, operator := newTokenFixture(t)

	token, minted, err := svc.Mint(context.Background(), operator, session.ID, "", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if minted.ID != session.ID {
		t.Fatalf("minted against wrong session")
	}
	if strings.Count(token, ".") != 1 {
		t.Fatalf("token must have exactly two segments, got %q", token)
	}

	payload, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if payload.SessionID != session.ID {
		t.Errorf("session id = %s, want %s", payload.SessionID, session.ID)
	}
	if payload.OrganizationID != session.OrganizationID {
		t.Errorf("organization id mismatch")
	}
	if payload.Mode != ModeRead {
		t.Errorf("mode = %q, want %q", payload.Mode, ModeRead)
	}
	if payload.ExpiresAt-payload.IssuedAt != int64(TokenTTL.Seconds()) {
		t.Errorf("token lifetime = %ds, want %ds", payload.ExpiresAt-payload.IssuedAt, int64(TokenTTL.Seconds()))
	}
}

func TestMint_WriteModeSession(t *testing.T) {
	svc, repo, session, operator := newTokenFixture(t)
	repo.sessions[session.ID].SessionType = SessionSupportMode

	token, _, err := svc.Mint(context.Background(), operator, session.ID, "", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	payload, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if payload.Mode != ModeWrite {
		t.Errorf("mode = %q, want %q", payload.Mode, ModeWrite)
	}
}

func TestMint_Denied(t *testing.T) {
	svc, repo, session, operator := newTokenFixture(t)

	if _, _, err := svc.Mint(context.Background(), uuid.New(), session.ID, "", ""); err != ErrNotSessionOwner {
		t.Fatalf("foreign operator: got %v, want %v", err, ErrNotSessionOwner)
	}
	if _, _, err := svc.Mint(context.Background(), operator, uuid.New(), "", ""); err != ErrSessionNotFound {
		t.Fatalf("unknown session: got %v, want %v", err, ErrSessionNotFound)
	}

	repo.sessions[session.ID].IsActive = false
	if _, _, err := svc.Mint(context.Background(), operator, session.ID, "", ""); err != ErrSessionInactive {
		t.Fatalf("ended session: got %v, want %v", err, ErrSessionInactive)
	}

	repo.sessions[session.ID].IsActive = true
	repo.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)
	if _, _, err := svc.Mint(context.Background(), operator, session.ID, "", ""); err != ErrSessionInactive {
		t.Fatalf("expired session: got %v, want %v", err, ErrSessionInactive)
	}
}

func TestValidate_UniformFailure(t *testing.T) {
	svc, _, session, operator := newTokenFixture(t)

	token, _, err := svc.Mint(context.Background(), operator, session.ID, "", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Tamper with one byte of the payload segment.
	tampered := []byte(token)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}

	other := NewTokenService("a-different-secret", newFakeRepo(), NewAuditLogger(&fakeAuditRepo{}))

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", strings.ReplaceAll(token, ".", "_")},
		{"three segments", token + ".extra"},
		{"tampered payload", string(tampered)},
		{"truncated signature", token[:len(token)-4]},
		{"not base64", "!!!.???"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Validate(tc.token); err != ErrTokenInvalid {
				t.Fatalf("got %v, want %v", err, ErrTokenInvalid)
			}
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := other.Validate(token); err != ErrTokenInvalid {
			t.Fatalf("got %v, want %v", err, ErrTokenInvalid)
		}
	})
}

func TestValidate_Expired(t *testing.T) {
	svc, _, session, operator := newTokenFixture(t)

	token, _, err := svc.Mint(context.Background(), operator, session.ID, "", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(TokenTTL + time.Second) }
	if _, err := svc.Validate(token); err != ErrTokenInvalid {
		t.Fatalf("expired token: got %v, want %v", err, ErrTokenInvalid)
	}
}
