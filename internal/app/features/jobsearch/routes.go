// internal/app/features/jobsearch/routes.go
package jobsearch

import (
	"net/http"

	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"github.com/dalemusser/bilanhub/internal/app/system/requestid"
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the lookups (typically at "/api/jobsearch"). They are open
// to anonymous callers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	if h.Limiter != nil {
		r.Use(ratelimit.Middleware(h.Limiter,
			func(r *http.Request) string { return requestid.From(r.Context()).IP },
			func(w http.ResponseWriter, r *http.Request) { rpc.WriteError(w, r, h.Log, apperr.RateLimited()) },
		))
	}
	r.Post("/searchRome", rpc.HandlePublic(h.Log, h.searchRome))
	r.Post("/getRomeDetails", rpc.HandlePublic(h.Log, h.getRomeDetails))
	r.Post("/searchJobs", rpc.HandlePublic(h.Log, h.searchJobs))
	r.Post("/searchTrainings", rpc.HandlePublic(h.Log, h.searchTrainings))
	r.Post("/getRelatedJobs", rpc.HandlePublic(h.Log, h.getRelatedJobs))
	return r
}
