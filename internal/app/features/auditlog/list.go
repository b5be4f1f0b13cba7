// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/limits"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type listInput struct {
	OrganizationID *int64 `json:"organizationId" validate:"omitempty,min=1"`
	UserID         *int64 `json:"userId" validate:"omitempty,min=1"`
	EntityType     string `json:"entityType" validate:"omitempty,max=50"`
	EntityID       *int64 `json:"entityId" validate:"omitempty,min=1"`
	Category       string `json:"category" validate:"omitempty,oneof=auth admin workflow"`
	Limit          int64  `json:"limit" validate:"omitempty,min=1,max=500"`
}

// list returns entries newest first. An ORG_ADMIN is pinned to their own
// organization whatever the input says; other roles are refused.
func (h *Handler) list(ctx context.Context, a authz.Actor, in listInput) ([]models.AuditLog, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "auditLog.list")
	defer cancel()

	f := store.AuditFilter{
		OrganizationID: in.OrganizationID,
		UserID:         in.UserID,
		EntityType:     in.EntityType,
		EntityID:       in.EntityID,
		Category:       in.Category,
		Limit:          in.Limit,
	}
	switch {
	case a.IsAdmin():
	case a.IsOrgAdmin() && a.OrganizationID != nil:
		if in.OrganizationID != nil && *in.OrganizationID != *a.OrganizationID {
			return nil, apperr.Forbidden("not allowed on this organization")
		}
		f.OrganizationID = a.OrganizationID
	default:
		return nil, apperr.Forbidden("audit trail is restricted to administrators")
	}
	if f.Limit <= 0 {
		f.Limit = limits.DefaultAuditRows
	}
	if f.Limit > limits.MaxAuditRows {
		f.Limit = limits.MaxAuditRows
	}

	logs, err := h.Stores.Audit.Find(ctx, f)
	if err != nil {
		return nil, apperr.From(err)
	}
	return logs, nil
}
