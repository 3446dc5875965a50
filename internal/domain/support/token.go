package support

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/essayons/essayons-api/internal/pkg/metrics"
)

// TokenPayload is the signed body of an impersonation handoff token.
type TokenPayload struct {
	SessionID      uuid.UUID `json:"sessionId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Mode           string    `json:"mode"`
	IssuedAt       int64     `json:"iat"`
	ExpiresAt      int64     `json:"exp"`
}

// TokenService mints and validates short-lived impersonation handoff
// tokens. A token carries no bearer authority by itself; binding re-checks
// the underlying session in storage.
type TokenService struct {
	secret []byte
	repo   Repository
	audit  *AuditLogger
	now    func() time.Time
}

// NewTokenService creates the impersonation token service
func NewTokenService(secret string, repo Repository, audit *AuditLogger) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		repo:   repo,
		audit:  audit,
		now:    time.Now,
	}
}

func (t *TokenService) sign(payloadSegment string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payloadSegment))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Mint issues a handoff token for a session the operator owns and which is
// currently active. The token expires after TokenTTL regardless of the
// session's own deadline.
func (t *TokenService) Mint(ctx context.Context, operatorID, sessionID uuid.UUID, ip, userAgent string) (string, *Session, error) {
	session, err := t.repo.GetSession(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	if session == nil {
		return "", nil, ErrSessionNotFound
	}
	if session.SuperAdminUserID != operatorID {
		return "", nil, ErrNotSessionOwner
	}
	now := t.now()
	if !session.CurrentlyActive(now) {
		return "", nil, ErrSessionInactive
	}

	payload := TokenPayload{
		SessionID:      session.ID,
		OrganizationID: session.OrganizationID,
		Mode:           session.SessionType.Mode(),
		IssuedAt:       now.Unix(),
		ExpiresAt:      now.Add(TokenTTL).Unix(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	payloadSegment := base64.RawURLEncoding.EncodeToString(raw)
	token := payloadSegment + "." + t.sign(payloadSegment)

	metrics.SupportSessionEvents.WithLabelValues(ActionTokenMinted).Inc()
	t.audit.Record(ctx, Entry{
		SessionID:        session.ID,
		SuperAdminUserID: operatorID,
		OrganizationID:   session.OrganizationID,
		Action:           ActionTokenMinted,
		Description:      "Impersonation token minted",
		Details: map[string]interface{}{
			"mode":       payload.Mode,
			"expires_at": payload.ExpiresAt,
		},
		AccessLevel: payload.Mode,
		IPAddress:   ip,
		UserAgent:   userAgent,
	})

	return token, session, nil
}

// Validate checks the token's signature and expiry and returns its payload.
// Every failure mode returns ErrTokenInvalid so callers cannot distinguish
// a forged token from an expired one.
func (t *TokenService) Validate(token string) (*TokenPayload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrTokenInvalid
	}

	expected := t.sign(parts[0])
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[1])) != 1 {
		return nil, ErrTokenInvalid
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrTokenInvalid
	}
	var payload TokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrTokenInvalid
	}
	if payload.SessionID == uuid.Nil || payload.OrganizationID == uuid.Nil {
		return nil, ErrTokenInvalid
	}
	if payload.Mode != ModeRead && payload.Mode != ModeWrite {
		return nil, ErrTokenInvalid
	}
	if t.now().Unix() >= payload.ExpiresAt {
		return nil, ErrTokenInvalid
	}

	return &payload, nil
}
