// internal/app/features/documents/documents.go
package documents

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bilanhub/internal/app/system/limits"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

type listInput struct {
	BilanID int64               `json:"bilanId" validate:"required,min=1"`
	Type    models.DocumentType `json:"type" validate:"omitempty,oneof=CV COVER_LETTER SYNTHESIS REPORT OTHER"`
}

type idInput struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

type renameInput struct {
	ID       int64  `json:"id" validate:"required,min=1"`
	FileName string `json:"fileName" validate:"required,max=255"`
}

type uploadInput struct {
	BilanID  int64               `json:"bilanId" validate:"required,min=1"`
	Type     models.DocumentType `json:"type" validate:"required,oneof=CV COVER_LETTER SYNTHESIS REPORT OTHER"`
	Title    string              `json:"title" validate:"max=200"`
	FileName string              `json:"fileName" validate:"required,max=255"`
	MimeType string              `json:"mimeType" validate:"required,max=100"`
	Content  string              `json:"content" validate:"required,base64"`
}

func (h *Handler) listByBilan(ctx context.Context, a authz.Actor, in listInput) ([]models.Document, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "documents.listByBilan")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	docs, err := h.Stores.Documents.ListByBilan(ctx, b.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	if in.Type == "" {
		return docs, nil
	}
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.Type == in.Type {
			out = append(out, d)
		}
	}
	return out, nil
}

func (h *Handler) getByID(ctx context.Context, a authz.Actor, in idInput) (models.Document, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "documents.getById")
	defer cancel()

	d, _, err := shared.Record(ctx, h.Stores.Bilans, a, "document",
		func(ctx context.Context) (models.Document, error) { return h.Stores.Documents.GetByID(ctx, in.ID) },
		func(d models.Document) int64 { return d.BilanID },
		recordpolicy.CanRead)
	return d, err
}

// upload stores the decoded file under bilans/{id}/documents/ and records
// its metadata.
func (h *Handler) upload(ctx context.Context, a authz.Actor, in uploadInput) (models.Document, error) {
	data, err := base64.StdEncoding.DecodeString(in.Content)
	if err != nil {
		return models.Document{}, apperr.ValidationFields(map[string]string{"content": "must be base64 encoded"})
	}
	if len(data) == 0 {
		return models.Document{}, apperr.ValidationFields(map[string]string{"content": "is empty"})
	}
	if len(data) > limits.MaxDocumentBytes {
		return models.Document{}, apperr.ValidationFields(map[string]string{"content": "file is larger than 10 MiB"})
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "documents.upload")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanWrite)
	if err != nil {
		return models.Document{}, err
	}

	key := objectstore.Key(b.ID, "documents", in.FileName)
	url, err := h.Objects.Put(ctx, key, data, in.MimeType)
	if err != nil {
		h.Log.Error("document upload failed", zap.Error(err), zap.Int64("bilan_id", b.ID), zap.String("key", key))
		return models.Document{}, apperr.External("object storage", err)
	}

	title := htmlsanitize.StripTags(in.Title)
	if title == "" {
		title = strings.TrimSpace(in.FileName)
	}
	d, err := h.Stores.Documents.Create(ctx, models.Document{
		BilanID:    b.ID,
		Type:       in.Type,
		Title:      title,
		FileName:   in.FileName,
		StorageKey: key,
		URL:        url,
		FileSize:   int64(len(data)),
		MimeType:   in.MimeType,
		UploadedBy: a.ID,
	})
	if err != nil {
		return models.Document{}, apperr.From(err)
	}
	h.Audit.Workflow(ctx, models.ActionDocumentUploaded, "document", d.ID, b.OrganizationID, map[string]any{
		"bilan_id":  b.ID,
		"type":      d.Type,
		"file_size": d.FileSize,
	})
	return d, nil
}

// updateName changes the file name shown for a document. The stored object
// and its key are untouched.
func (h *Handler) updateName(ctx context.Context, a authz.Actor, in renameInput) (models.Document, error) {
	name := htmlsanitize.StripTags(in.FileName)
	if name == "" {
		return models.Document{}, apperr.ValidationFields(map[string]string{"fileName": "is empty"})
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "documents.updateName")
	defer cancel()

	d, b, err := shared.Record(ctx, h.Stores.Bilans, a, "document",
		func(ctx context.Context) (models.Document, error) { return h.Stores.Documents.GetByID(ctx, in.ID) },
		func(d models.Document) int64 { return d.BilanID },
		recordpolicy.CanWrite)
	if err != nil {
		return models.Document{}, err
	}
	renamed, err := h.Stores.Documents.Rename(ctx, d.ID, name)
	if err != nil {
		return models.Document{}, apperr.FromStore("document", err)
	}
	h.Audit.Workflow(ctx, models.ActionDocumentRenamed, "document", d.ID, b.OrganizationID, map[string]string{
		"from": d.FileName,
		"to":   renamed.FileName,
	})
	return renamed, nil
}

// delete removes the document record. The stored object is left in place.
func (h *Handler) delete(ctx context.Context, a authz.Actor, in idInput) (shared.OK, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "documents.delete")
	defer cancel()

	d, b, err := shared.Record(ctx, h.Stores.Bilans, a, "document",
		func(ctx context.Context) (models.Document, error) { return h.Stores.Documents.GetByID(ctx, in.ID) },
		func(d models.Document) int64 { return d.BilanID },
		recordpolicy.CanDeleteDocument)
	if err != nil {
		return shared.OK{}, err
	}
	if err := h.Stores.Documents.Delete(ctx, d.ID); err != nil {
		return shared.OK{}, apperr.FromStore("document", err)
	}
	h.Audit.Workflow(ctx, models.ActionDocumentDeleted, "document", d.ID, b.OrganizationID, map[string]any{
		"bilan_id":    b.ID,
		"storage_key": d.StorageKey,
	})
	return shared.Done, nil
}
