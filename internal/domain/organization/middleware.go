package organization

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/middleware"
	"github.com/essayons/essayons-api/internal/pkg/response"
)

// OrganizationHeader names the requested tenant explicitly.
const OrganizationHeader = "X-Organization-ID"

// RequireTenant resolves the request's organization scope and stores it on
// the context. Requests that cannot be bound to an active membership in an
// active organization are rejected; no handler below this middleware runs
// without a tenant.
func RequireTenant(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := middleware.GetUserID(r.Context())
			if userID == uuid.Nil {
				response.Unauthorized(w, "Not authenticated")
				return
			}

			requestedOrgID := uuid.Nil
			if raw := r.Header.Get(OrganizationHeader); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					response.BadRequest(w, "Invalid "+OrganizationHeader+" header")
					return
				}
				requestedOrgID = id
			}

			// A bound support session pins the tenant; the header cannot
			// redirect an impersonated request to another organization.
			if imp := middleware.GetImpersonation(r.Context()); imp != nil {
				if requestedOrgID != uuid.Nil && requestedOrgID != imp.OrganizationID {
					response.Forbidden(w, "Organization is fixed for the support session")
					return
				}
				org, err := service.GetByID(r.Context(), imp.OrganizationID)
				if err != nil {
					log.Error().Err(err).Msg("Failed to load organization")
					response.InternalError(w)
					return
				}
				if org == nil {
					response.Forbidden(w, "No organization context")
					return
				}
				tc := &TenantContext{
					OrganizationID: org.ID,
					OrgRole:        OrgRoleAdmin,
					Organization:   org,
				}
				next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tc)))
				return
			}

			tc, err := service.ResolveTenant(r.Context(), userID, requestedOrgID)
			if err != nil {
				switch err {
				case ErrNoOrganizationContext, ErrNoActiveMembership:
					response.Forbidden(w, "No organization context")
				case ErrOrganizationNotFound:
					response.Forbidden(w, "No organization context")
				case ErrOrganizationSuspended:
					response.Forbidden(w, "Organization is suspended")
				default:
					log.Error().Err(err).Msg("Failed to resolve tenant")
					response.InternalError(w)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tc)))
		})
	}
}

// RequireFeature gates a route group on an organization feature flag.
// Must run below RequireTenant.
func RequireFeature(service *Service, feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := TenantFromContext(r.Context())
			if tc == nil {
				response.Forbidden(w, "No organization context")
				return
			}

			if err := service.RequireFeature(r.Context(), tc.OrganizationID, feature); err != nil {
				switch err {
				case ErrFeatureDisabled:
					response.Forbidden(w, "Feature is not enabled for this organization")
				case ErrOrganizationNotFound:
					response.Forbidden(w, "No organization context")
				default:
					log.Error().Err(err).Msg("Failed to check organization feature")
					response.InternalError(w)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
