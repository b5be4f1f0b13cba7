// internal/app/features/documents/routes.go
package documents

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the document procedures (typically at "/api/documents").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/listByBilan", rpc.Handle(h.Log, h.listByBilan))
	r.Post("/getById", rpc.Handle(h.Log, h.getByID))
	r.Post("/upload", rpc.Handle(h.Log, h.upload))
	r.Post("/updateName", rpc.Handle(h.Log, h.updateName))
	r.Post("/delete", rpc.Handle(h.Log, h.delete))
	return r
}
