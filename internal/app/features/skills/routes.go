// internal/app/features/skills/routes.go
package skills

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the skills procedures (typically at "/api/skills").
// Beneficiaries self-assess on their own bilan; validation and deletion
// follow the bilan write rule.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/save", rpc.Handle(h.Log, h.save))
	r.Post("/saveBatch", rpc.Handle(h.Log, h.saveBatch))
	r.Post("/listByBilan", rpc.Handle(h.Log, h.listByBilan))
	r.Post("/validate", rpc.Handle(h.Log, h.validate))
	r.Post("/delete", rpc.Handle(h.Log, h.delete))
	r.Post("/getStats", rpc.Handle(h.Log, h.getStats))
	return r
}
