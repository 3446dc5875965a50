package organization

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns organization router. All routes require tenant-side
// authentication; /current additionally requires a resolved tenant.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Create)
		r.Get("/", h.ListMine)
		r.Put("/default", h.SetDefault)

		r.Group(func(r chi.Router) {
			r.Use(RequireTenant(h.service))
			r.Get("/current", h.Current)
		})
	})

	return r
}
