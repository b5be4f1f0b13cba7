// internal/app/features/login/handler.go
package login

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler exchanges identity tokens for cookie sessions and ends them.
type Handler struct {
	Stores     store.Set
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.Limiter
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler wires the sign-in handler. limiter may be nil.
func NewHandler(stores store.Set, sessionMgr *auth.SessionManager, limiter *ratelimit.Limiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Stores:     stores,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Audit:      audit,
		Log:        logger,
	}
}
