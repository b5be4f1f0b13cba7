// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the session procedures (typically at "/api/sessions").
// Reads follow the bilan read rule, writes the bilan write rule.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/listByBilan", rpc.Handle(h.Log, h.listByBilan))
	r.Post("/getById", rpc.Handle(h.Log, h.getByID))
	r.Post("/create", rpc.Handle(h.Log, h.create))
	r.Post("/update", rpc.Handle(h.Log, h.update))
	r.Post("/updateStatus", rpc.Handle(h.Log, h.updateStatus))
	r.Post("/markCompleted", rpc.Handle(h.Log, h.markCompleted))
	return r
}
