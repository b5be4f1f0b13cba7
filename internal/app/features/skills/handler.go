// internal/app/features/skills/handler.go
package skills

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"go.uber.org/zap"
)

// Handler serves the skills evaluation procedures.
type Handler struct {
	Stores store.Set
	Log    *zap.Logger
}

func NewHandler(stores store.Set, logger *zap.Logger) *Handler {
	return &Handler{Stores: stores, Log: logger}
}
