package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/essayons/essayons-api/internal/domain/permission"
)

// Routes returns project router. Reads require the see capability; writes
// require the modify/delete capability with support-session awareness.
func (h *Handler) Routes(authMiddleware, tenantMiddleware func(http.Handler) http.Handler, resolver *permission.Resolver) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(tenantMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(permission.RequireFlag(resolver, permission.FlagSeeProjects))
			r.Get("/", h.List)
			r.Get("/{id}", h.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(permission.RequireEnhancedFlag(resolver, permission.FlagModifyProjects))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
		})

		r.Group(func(r chi.Router) {
			r.Use(permission.RequireEnhancedFlag(resolver, permission.FlagDeleteProjects))
			r.Delete("/{id}", h.Delete)
		})
	})

	return r
}
