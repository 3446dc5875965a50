package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the operator admin router
func (h *Handler) Routes(authMiddleware, loginLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(loginLimiter)
		r.Post("/auth/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/auth/me", h.Me)

		r.Group(func(r chi.Router) {
			r.Use(RequirePermission(PermManageOperators))
			r.Get("/operators", h.List)
			r.Post("/operators", h.Create)
			r.Patch("/operators/{id}", h.Update)
		})
	})

	return r
}
