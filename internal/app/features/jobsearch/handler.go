// internal/app/features/jobsearch/handler.go
package jobsearch

import (
	"github.com/dalemusser/bilanhub/internal/app/system/jobsearch"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the public job and training lookups. Limiter, when set,
// bounds requests per client IP.
type Handler struct {
	Search  jobsearch.Searcher
	Limiter *ratelimit.Limiter
	Log     *zap.Logger
}

func NewHandler(search jobsearch.Searcher, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{Search: search, Limiter: limiter, Log: logger}
}
