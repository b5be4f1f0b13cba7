// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the organization procedures (typically at
// "/api/organizations"). Only ADMIN creates organizations; ORG_ADMIN reads
// and edits their own.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/list", rpc.Handle(h.Log, h.list))
	r.Post("/getById", rpc.Handle(h.Log, h.getByID))
	r.Post("/create", rpc.Handle(h.Log, h.create))
	r.Post("/update", rpc.Handle(h.Log, h.update))
	r.Post("/getStats", rpc.Handle(h.Log, h.getStats))
	return r
}
