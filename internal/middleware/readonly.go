package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/session"
)

// SupportState is consulted on every mutating request carrying bound
// impersonation state. Implemented by the support session service.
type SupportState interface {
	ImpersonationState(ctx context.Context, sessionID uuid.UUID) (active, readOnly bool, err error)
	RecordBlockedWrite(ctx context.Context, sessionID uuid.UUID, method, path, ip, userAgent string)
}

// Paths an operator may still write to while read-only: managing the
// support session itself and signing out.
var readOnlyAllowedPrefixes = []string{
	"/api/v1/support/session",
	"/api/v1/support/impersonation",
	"/api/v1/auth/logout",
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func readOnlyAllowed(path string) bool {
	for _, prefix := range readOnlyAllowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ReadOnlyEnforcer rejects mutating requests made under a read-only support
// session. Session state is read fresh from storage on every decision, so
// ending a session or toggling it to write mode takes effect on the next
// request. Stale bound state (session ended or expired) is stripped from
// the browser session and the request proceeds as the operator's own.
func ReadOnlyEnforcer(state SupportState, sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			imp := GetImpersonation(r.Context())
			if imp == nil {
				next.ServeHTTP(w, r)
				return
			}

			active, readOnly, err := state.ImpersonationState(r.Context(), imp.SessionID)
			if err != nil {
				log.Error().Err(err).
					Str("support_session_id", imp.SessionID.String()).
					Msg("Failed to check support session state")
				response.InternalError(w)
				return
			}

			if !active {
				clearImpersonation(r, sessions)
				ctx := context.WithValue(r.Context(), ImpersonationKey, (*session.Impersonation)(nil))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if readOnly && mutatingMethod(r.Method) && !readOnlyAllowed(r.URL.Path) {
				state.RecordBlockedWrite(r.Context(), imp.SessionID, r.Method, r.URL.Path, ClientIP(r), r.UserAgent())
				response.Forbidden(w, "Write operations are disabled in read-only support mode")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clearImpersonation(r *http.Request, sessions *session.Store) {
	id := GetSessionID(r.Context())
	if id == "" {
		return
	}
	data, err := sessions.Get(r.Context(), id)
	if err != nil {
		return
	}
	data.Impersonation = nil
	if err := sessions.Save(r.Context(), id, data); err != nil {
		log.Error().Err(err).Msg("Failed to clear stale impersonation state")
	}
}
