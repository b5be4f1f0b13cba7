// internal/app/features/bilans/handler.go
package bilans

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Bilans.
type Handler struct {
	Stores store.Set
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a Bilans handler bound to the stores and logger.
func NewHandler(stores store.Set, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Stores: stores,
		Audit:  audit,
		Log:    logger,
	}
}
