package permission

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the permission router. Management endpoints are themselves
// capability-guarded; resolution of one's own set only requires a tenant.
func (h *Handler) Routes(authMiddleware, tenantMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(tenantMiddleware)

		r.Get("/me", h.ResolveMine)

		r.Group(func(r chi.Router) {
			r.Use(RequireEnhancedFlag(h.resolver, FlagManageRoles))
			r.Post("/roles", h.CreateRole)
			r.Put("/roles/{id}", h.UpdateRole)
			r.Delete("/roles/{id}", h.DeleteRole)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireFlag(h.resolver, FlagManageRoles))
			r.Get("/roles", h.ListRoles)
			r.Get("/roles/{id}", h.GetRole)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireEnhancedFlag(h.resolver, FlagManageGroups))
			r.Post("/groups", h.CreateGroup)
			r.Put("/groups/{id}", h.UpdateGroup)
			r.Delete("/groups/{id}", h.DeleteGroup)
			r.Post("/groups/{id}/members", h.AddMember)
			r.Delete("/groups/{id}/members/{userId}", h.RemoveMember)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireFlag(h.resolver, FlagManageGroups))
			r.Get("/groups", h.ListGroups)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireEnhancedFlag(h.resolver, FlagManagePermissions))
			r.Put("/overrides/{userId}", h.SetOverride)
			r.Delete("/overrides/{userId}", h.ClearOverride)
		})
	})

	return r
}
