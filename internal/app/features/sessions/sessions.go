// internal/app/features/sessions/sessions.go
package sessions

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type bilanInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
}

type idInput struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

type createInput struct {
	BilanID         int64     `json:"bilanId" validate:"required,min=1"`
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description" validate:"max=5000"`
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"omitempty,min=15,max=480"`
	Location        string    `json:"location" validate:"max=500"`
}

type updateInput struct {
	ID              int64      `json:"id" validate:"required,min=1"`
	Title           *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes *int       `json:"durationMinutes" validate:"omitempty,min=15,max=480"`
	Location        *string    `json:"location" validate:"omitempty,max=500"`
	Notes           *string    `json:"notes" validate:"omitempty,max=20000"`
}

type statusInput struct {
	ID          int64                `json:"id" validate:"required,min=1"`
	Status      models.SessionStatus `json:"status" validate:"required,oneof=SCHEDULED COMPLETED CANCELLED RESCHEDULED"`
	ScheduledAt *time.Time           `json:"scheduledAt"`
}

type completeInput struct {
	ID    int64   `json:"id" validate:"required,min=1"`
	Notes *string `json:"notes" validate:"omitempty,max=20000"`
}

func (h *Handler) listByBilan(ctx context.Context, a authz.Actor, in bilanInput) ([]models.Session, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "sessions.listByBilan")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	out, err := h.Stores.Sessions.ListByBilan(ctx, b.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

// load fetches the session and its bilan and checks allow against the bilan.
func (h *Handler) load(ctx context.Context, a authz.Actor, id int64, allow shared.BilanRule) (models.Session, error) {
	s, _, err := shared.Record(ctx, h.Stores.Bilans, a, "session",
		func(ctx context.Context) (models.Session, error) { return h.Stores.Sessions.GetByID(ctx, id) },
		func(s models.Session) int64 { return s.BilanID },
		allow)
	return s, err
}

func (h *Handler) getByID(ctx context.Context, a authz.Actor, in idInput) (models.Session, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "sessions.getById")
	defer cancel()
	return h.load(ctx, a, in.ID, recordpolicy.CanRead)
}

// create schedules a session. Consultant and beneficiary are copied from
// the bilan as it stands now.
func (h *Handler) create(ctx context.Context, a authz.Actor, in createInput) (models.Session, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "sessions.create")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanWrite)
	if err != nil {
		return models.Session{}, err
	}
	s, err := h.Stores.Sessions.Create(ctx, models.Session{
		BilanID:         b.ID,
		ConsultantID:    b.ConsultantID,
		BeneficiaryID:   b.BeneficiaryID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		Status:          models.SessionScheduled,
		Location:        in.Location,
	})
	if err != nil {
		return models.Session{}, apperr.From(err)
	}
	return s, nil
}

func (h *Handler) update(ctx context.Context, a authz.Actor, in updateInput) (models.Session, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "sessions.update")
	defer cancel()

	s, err := h.load(ctx, a, in.ID, recordpolicy.CanWrite)
	if err != nil {
		return models.Session{}, err
	}
	p := store.SessionPatch{
		Title:           in.Title,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		Location:        in.Location,
	}
	if in.ScheduledAt != nil {
		p.ScheduledAt = shared.Ptr(in.ScheduledAt.UTC())
	}
	if in.Notes != nil {
		p.Notes = shared.Ptr(htmlsanitize.StripTags(*in.Notes))
	}
	return h.patch(ctx, s.ID, p)
}

// updateStatus sets any session status. RESCHEDULED requires the new date.
func (h *Handler) updateStatus(ctx context.Context, a authz.Actor, in statusInput) (models.Session, error) {
	if in.Status == models.SessionRescheduled && in.ScheduledAt == nil {
		return models.Session{}, apperr.ValidationFields(map[string]string{
			"scheduledAt": "is required when status is RESCHEDULED",
		})
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "sessions.updateStatus")
	defer cancel()

	s, err := h.load(ctx, a, in.ID, recordpolicy.CanWrite)
	if err != nil {
		return models.Session{}, err
	}
	p := store.SessionPatch{Status: &in.Status}
	if in.Status == models.SessionRescheduled {
		p.ScheduledAt = shared.Ptr(in.ScheduledAt.UTC())
	}
	return h.patch(ctx, s.ID, p)
}

func (h *Handler) markCompleted(ctx context.Context, a authz.Actor, in completeInput) (models.Session, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "sessions.markCompleted")
	defer cancel()

	s, err := h.load(ctx, a, in.ID, recordpolicy.CanWrite)
	if err != nil {
		return models.Session{}, err
	}
	p := store.SessionPatch{Status: shared.Ptr(models.SessionCompleted)}
	if in.Notes != nil {
		p.Notes = shared.Ptr(htmlsanitize.StripTags(*in.Notes))
	}
	return h.patch(ctx, s.ID, p)
}

func (h *Handler) patch(ctx context.Context, id int64, p store.SessionPatch) (models.Session, error) {
	out, err := h.Stores.Sessions.Update(ctx, id, p)
	if err != nil {
		return models.Session{}, apperr.FromStore("session", err)
	}
	return out, nil
}
