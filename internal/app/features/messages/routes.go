// internal/app/features/messages/routes.go
package messages

import (
	"github.com/dalemusser/bilanhub/internal/app/system/rpc"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the message procedures (typically at "/api/messages").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/send", rpc.Handle(h.Log, h.send))
	r.Post("/listByBilan", rpc.Handle(h.Log, h.listByBilan))
	r.Post("/listConversations", rpc.Handle(h.Log, h.listConversations))
	r.Post("/markAsRead", rpc.Handle(h.Log, h.markAsRead))
	r.Post("/markBilanAsRead", rpc.Handle(h.Log, h.markBilanAsRead))
	r.Post("/countUnread", rpc.Handle(h.Log, h.countUnread))
	r.Post("/delete", rpc.Handle(h.Log, h.delete))
	return r
}
