// internal/app/features/bilans/routes.go
package bilans

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the bilan procedures under the base path
// (typically "/api/bilans" from bootstrap).
//
// Every procedure requires a signed-in caller; the per-bilan rules live in
// bilanpolicy and are applied after the bilan is loaded.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/list", rpc.Handle(h.Log, h.list))
	r.Post("/getById", rpc.Handle(h.Log, h.getByID))

	// Consultants, org admins and admins
	r.Post("/create", rpc.Handle(h.Log, h.create))
	r.Post("/update", rpc.Handle(h.Log, h.update))
	r.Post("/updateStatus", rpc.Handle(h.Log, h.updateStatus))

	// Org admins of the bilan's org and admins
	r.Post("/delete", rpc.Handle(h.Log, h.delete))
	r.Post("/assignConsultant", rpc.Handle(h.Log, h.assignConsultant))

	return r
}
