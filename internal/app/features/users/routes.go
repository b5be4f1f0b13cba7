// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account procedures (typically at "/api/users").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/me", rpc.Handle(h.Log, h.me))
	r.Post("/updateProfile", rpc.Handle(h.Log, h.updateProfile))
	r.Post("/list", rpc.Handle(h.Log, h.list))
	r.Post("/getById", rpc.Handle(h.Log, h.getByID))
	r.Post("/update", rpc.Handle(h.Log, h.update))
	r.Post("/deactivate", rpc.Handle(h.Log, h.deactivate))
	r.Post("/assignToOrganization", rpc.Handle(h.Log, h.assignToOrganization))
	return r
}
