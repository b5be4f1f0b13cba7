// internal/app/features/qualiopi/handler.go
package qualiopi

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves Qualiopi compliance tracking for an organization.
type Handler struct {
	Stores store.Set
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(stores store.Set, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Stores: stores, Audit: audit, Log: logger}
}
