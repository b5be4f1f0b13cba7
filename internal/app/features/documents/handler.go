// internal/app/features/documents/handler.go
package documents

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"go.uber.org/zap"
)

// Handler serves the document procedures. Files go to Objects; the store
// keeps their metadata and URL.
type Handler struct {
	Stores  store.Set
	Objects objectstore.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(stores store.Set, objects objectstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Stores:  stores,
		Objects: objects,
		Audit:   audit,
		Log:     logger,
	}
}
