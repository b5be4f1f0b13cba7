// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"go.uber.org/zap"
)

type Handler struct {
	Stores store.Set
	Log    *zap.Logger
}

// NewHandler constructs the audit trail handler.
func NewHandler(stores store.Set, logger *zap.Logger) *Handler {
	return &Handler{Stores: stores, Log: logger}
}
