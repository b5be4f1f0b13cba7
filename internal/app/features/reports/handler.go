// internal/app/features/reports/handler.go
package reports

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
	"go.uber.org/zap"
)

// Handler renders bilan PDFs, stores them in object storage and records
// each as a Document of the bilan.
type Handler struct {
	Stores  store.Set
	Objects objectstore.Store
	PDF     pdfgen.Renderer
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(stores store.Set, objects objectstore.Store, pdf pdfgen.Renderer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Stores: stores, Objects: objects, PDF: pdf, Audit: audit, Log: logger}
}
