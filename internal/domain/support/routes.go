package support

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the support router. Session lifecycle and audit reads
// require operator authentication; bind is reached with only the handoff
// token and must be rate limited by the caller.
func (h *Handler) Routes(operatorAuth func(http.Handler) http.Handler, bindLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(operatorAuth)
		r.Post("/session", h.Create)
		r.Get("/session", h.ListMy)
		r.Get("/session/{id}", h.GetByID)
		r.Patch("/session/{id}/toggle-mode", h.ToggleMode)
		r.Patch("/session/{id}/end", h.End)
		r.Post("/impersonation/token", h.MintToken)
		r.Get("/audit-logs", h.ListAuditLogs)
	})

	r.Group(func(r chi.Router) {
		r.Use(bindLimiter)
		r.Post("/impersonation/bind", h.Bind)
	})

	return r
}
