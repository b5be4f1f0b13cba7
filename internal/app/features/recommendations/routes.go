// internal/app/features/recommendations/routes.go
package recommendations

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the recommendation procedures (typically at
// "/api/recommendations"). Generation follows the bilan write rule.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/listByBilan", rpc.Handle(h.Log, h.listByBilan))
	r.Post("/generateCareer", rpc.Handle(h.Log, h.generateCareer))
	r.Post("/analyzeSkills", rpc.Handle(h.Log, h.analyzeSkills))
	r.Post("/generateActionPlan", rpc.Handle(h.Log, h.generateActionPlan))
	r.Post("/generateSynthesis", rpc.Handle(h.Log, h.generateSynthesis))
	return r
}
