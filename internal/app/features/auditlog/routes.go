// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail (typically at "/api/auditLog").
//
// Admins see every entry; organization admins only their organization's.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/list", rpc.Handle(h.Log, h.list))
	return r
}
