// internal/app/features/surveys/routes.go
package surveys

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the survey procedures (typically at "/api/surveys").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/create", rpc.Handle(h.Log, h.create))
	r.Post("/listByBilan", rpc.Handle(h.Log, h.listByBilan))
	r.Post("/submitResponse", rpc.Handle(h.Log, h.submitResponse))
	r.Post("/listResponses", rpc.Handle(h.Log, h.listResponses))
	return r
}
