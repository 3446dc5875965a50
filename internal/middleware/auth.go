package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/essayons/essayons-api/internal/pkg/jwt"
	"github.com/essayons/essayons-api/internal/pkg/response"
	"github.com/essayons/essayons-api/internal/pkg/session"
)

type contextKey string

const (
	UserIDKey        contextKey = "user_id"
	SessionIDKey     contextKey = "session_id"
	ImpersonationKey contextKey = "impersonation"
)

// SessionCookieName is the opaque tenant-facing session identifier cookie.
const SessionCookieName = "essayons_session"

// Auth authenticates tenant requests. A server-side session cookie is
// checked first (browser clients, required for impersonation binding); a
// bearer JWT covers API clients. The session's impersonation state, if any,
// rides along in the context for downstream enforcement.
func Auth(sessions *session.Store, jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				data, err := sessions.Get(r.Context(), cookie.Value)
				switch {
				case err == nil:
					ctx := context.WithValue(r.Context(), UserIDKey, data.UserID)
					ctx = context.WithValue(ctx, SessionIDKey, cookie.Value)
					if data.Impersonation != nil {
						ctx = context.WithValue(ctx, ImpersonationKey, data.Impersonation)
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				case errors.Is(err, session.ErrNotFound):
					response.Unauthorized(w, "Session expired")
					return
				case errors.Is(err, session.ErrUnavailable):
					// No session backend; the cookie is dead weight and
					// bearer auth below is the only path.
				default:
					response.InternalError(w)
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing credentials")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}
			if claims.Scope != jwt.ScopeTenant {
				response.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetSessionID extracts the opaque tenant session ID from context
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetImpersonation extracts bound impersonation state from context, nil when
// the request is not part of a support session.
func GetImpersonation(ctx context.Context) *session.Impersonation {
	if imp, ok := ctx.Value(ImpersonationKey).(*session.Impersonation); ok {
		return imp
	}
	return nil
}
