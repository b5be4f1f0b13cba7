// internal/app/features/recommendations/handler.go
package recommendations

import (
	"strconv"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/advisor"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the AI-assisted recommendation procedures. Limiter bounds
// generation calls per user; a nil Limiter disables the bound.
type Handler struct {
	Stores  store.Set
	Advisor advisor.Advisor
	Limiter *ratelimit.Limiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(stores store.Set, adv advisor.Advisor, limiter *ratelimit.Limiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Stores: stores, Advisor: adv, Limiter: limiter, Audit: audit, Log: logger}
}

func (h *Handler) allow(a authz.Actor) error {
	if h.Limiter != nil && !h.Limiter.Allow("ai:"+strconv.FormatInt(a.ID, 10)) {
		return apperr.RateLimited()
	}
	return nil
}
