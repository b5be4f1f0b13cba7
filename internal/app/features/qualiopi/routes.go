// internal/app/features/qualiopi/routes.go
package qualiopi

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the Qualiopi procedures (typically at "/api/qualiopi").
// Access follows the organization rules: ADMIN any, ORG_ADMIN their own.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/indicators", rpc.Handle(h.Log, h.indicators))
	r.Post("/setIndicatorStatus", rpc.Handle(h.Log, h.setIndicatorStatus))
	r.Post("/metrics", rpc.Handle(h.Log, h.metrics))
	r.Get("/indicators.csv", h.serveIndicatorsCSV)
	return r
}
