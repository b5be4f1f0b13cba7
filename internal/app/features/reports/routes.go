// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the report procedures (typically at "/api/reports").
// Every report follows the bilan write rule.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/generateSynthesis", rpc.Handle(h.Log, h.generateSynthesis))
	r.Post("/generateAttestation", rpc.Handle(h.Log, h.generateAttestation))
	r.Post("/generateSessionReport", rpc.Handle(h.Log, h.generateSessionReport))
	return r
}
