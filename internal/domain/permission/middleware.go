package permission

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/metrics"
	"github.com/essayons/essayons-api/internal/pkg/response"
)

// RequireFlag guards a route on a resolved capability flag. Requests bound
// to a support session resolve against the session's live mode and scopes
// instead of a tenant role, since operators have no tenant user record.
func RequireFlag(resolver *Resolver, flag Flag) func(http.Handler) http.Handler {
	return requireFlag(resolver, flag, false)
}

// RequireEnhancedFlag is RequireFlag with support-session awareness:
// mutating capabilities are denied while the request operates under an
// active read-only support session.
func RequireEnhancedFlag(resolver *Resolver, flag Flag) func(http.Handler) http.Handler {
	return requireFlag(resolver, flag, true)
}

func requireFlag(resolver *Resolver, flag Flag, enhanced bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := middleware.GetUserID(r.Context())
			if userID == uuid.Nil {
				response.Unauthorized(w, "Not authenticated")
				return
			}

			var allowed bool
			var err error
			switch imp := middleware.GetImpersonation(r.Context()); {
			case imp != nil:
				allowed, err = resolver.CheckImpersonated(r.Context(), imp.SessionID, imp.Scopes, flag)
			case enhanced:
				allowed, err = resolver.CheckEnhanced(r.Context(), userID, flag, uuid.Nil)
			default:
				allowed, err = resolver.Check(r.Context(), userID, flag)
			}
			if err != nil {
				log.Error().Err(err).Str("flag", string(flag)).Msg("Failed to resolve permissions")
				response.InternalError(w)
				return
			}
			if !allowed {
				metrics.PermissionDenials.WithLabelValues(string(flag)).Inc()
				response.Forbidden(w, "Permission denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
