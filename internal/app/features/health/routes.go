// internal/app/features/health/routes.go
package health

import "github.com/go-chi/chi/v5"

// Routes serves readiness at / and liveness at /live. Mounted under /health.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	r.Get("/live", h.Live)
	return r
}
