// internal/app/features/messages/handler.go
package messages

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"go.uber.org/zap"
)

// Handler serves the messaging procedures between the participants of a bilan.
type Handler struct {
	Stores store.Set
	Log    *zap.Logger
}

func NewHandler(stores store.Set, logger *zap.Logger) *Handler {
	return &Handler{Stores: stores, Log: logger}
}
