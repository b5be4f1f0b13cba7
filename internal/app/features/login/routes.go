// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"github.com/dalemusser/bilanhub/internal/app/system/requestid"
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts sign-in and sign-out (typically at "/auth"). Login attempts
// are limited per client IP when a limiter is set.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		if h.Limiter != nil {
			pr.Use(ratelimit.Middleware(h.Limiter,
				func(r *http.Request) string { return "login:" + requestid.From(r.Context()).IP },
				func(w http.ResponseWriter, r *http.Request) {
					h.Audit.LoginFailed(r.Context(), "rate limited")
					rpc.WriteError(w, r, h.Log, apperr.RateLimited())
				},
			))
		}
		pr.Post("/login", h.HandleLogin)
	})
	r.Post("/logout", h.HandleLogout)
	return r
}
