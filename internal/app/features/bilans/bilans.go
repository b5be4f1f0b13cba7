// internal/app/features/bilans/bilans.go
package bilans

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/bilanpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/app/system/workflow"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

// list returns the bilans the caller may see, narrowed by the requested
// filter. The filter is intersected with the caller's scope and can never
// widen it.
func (h *Handler) list(ctx context.Context, a authz.Actor, in listInput) ([]models.Bilan, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "bilans.list")
	defer cancel()

	f, ok := bilanpolicy.Restrict(a, store.BilanFilter{
		OrganizationID: in.OrganizationID,
		ConsultantID:   in.ConsultantID,
		BeneficiaryID:  in.BeneficiaryID,
		Status:         in.Status,
	})
	if !ok {
		return []models.Bilan{}, nil
	}
	out, err := h.Stores.Bilans.Find(ctx, f)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

func (h *Handler) getByID(ctx context.Context, a authz.Actor, in idInput) (models.Bilan, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "bilans.getById")
	defer cancel()
	return shared.Bilan(ctx, h.Stores.Bilans, a, in.ID, bilanpolicy.CanRead)
}

// create opens a bilan in PRELIMINARY. Org admins create in their own
// organization; a consultant becomes the assigned consultant of the bilans
// they open; admins choose the organization or inherit the beneficiary's.
func (h *Handler) create(ctx context.Context, a authz.Actor, in createInput) (models.Bilan, error) {
	if !bilanpolicy.CanCreate(a) {
		return models.Bilan{}, apperr.Forbidden("your role cannot open bilans")
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "bilans.create")
	defer cancel()

	beneficiary, err := h.Stores.Users.GetByID(ctx, in.BeneficiaryID)
	if err != nil {
		return models.Bilan{}, apperr.FromStore("beneficiary", err)
	}
	if beneficiary.Role != models.RoleBeneficiary || !beneficiary.Enabled() {
		return models.Bilan{}, apperr.Conflict("user %d is not an active beneficiary", beneficiary.ID)
	}

	b := models.Bilan{
		BeneficiaryID: beneficiary.ID,
		Status:        models.BilanPreliminary,
		DurationHours: in.DurationHours,
		Objectives:    in.Objectives,
		Context:       in.Context,
	}
	if in.StartDate != nil {
		b.StartDate = in.StartDate.UTC()
	}
	if in.ExpectedEndDate != nil {
		b.ExpectedEndDate = shared.Ptr(in.ExpectedEndDate.UTC())
	}

	switch a.Role {
	case models.RoleOrgAdmin:
		if a.OrganizationID == nil {
			return models.Bilan{}, apperr.Forbidden("you are not attached to an organization")
		}
		b.OrganizationID = shared.Ptr(*a.OrganizationID)
	case models.RoleConsultant:
		if in.ConsultantID != nil && *in.ConsultantID != a.ID {
			return models.Bilan{}, apperr.Forbidden("consultants open bilans for themselves")
		}
		b.OrganizationID = a.OrganizationID
		b.ConsultantID = shared.Ptr(a.ID)
	case models.RoleAdmin:
		b.OrganizationID = in.OrganizationID
		if b.OrganizationID == nil {
			b.OrganizationID = beneficiary.OrganizationID
		}
	}

	if b.OrganizationID != nil {
		if _, err := h.Stores.Organizations.GetByID(ctx, *b.OrganizationID); err != nil {
			return models.Bilan{}, apperr.FromStore("organization", err)
		}
		if beneficiary.OrganizationID != nil && *beneficiary.OrganizationID != *b.OrganizationID {
			return models.Bilan{}, apperr.Conflict("beneficiary belongs to another organization")
		}
	}

	if in.ConsultantID != nil && b.ConsultantID == nil {
		if _, err := h.checkConsultant(ctx, *in.ConsultantID, b.OrganizationID); err != nil {
			return models.Bilan{}, err
		}
		b.ConsultantID = shared.Ptr(*in.ConsultantID)
	}

	created, err := h.Stores.Bilans.Create(ctx, b)
	if err != nil {
		h.Log.Error("bilan create failed", zap.Error(err), zap.Int64("beneficiary_id", b.BeneficiaryID))
		return models.Bilan{}, apperr.From(err)
	}
	h.Audit.Workflow(ctx, models.ActionBilanCreated, "bilan", created.ID, created.OrganizationID, map[string]any{
		"beneficiary_id": created.BeneficiaryID,
		"consultant_id":  created.ConsultantID,
	})
	return created, nil
}

func (h *Handler) update(ctx context.Context, a authz.Actor, in updateInput) (models.Bilan, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "bilans.update")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.ID, bilanpolicy.CanWrite)
	if err != nil {
		return models.Bilan{}, err
	}

	p := store.BilanPatch{
		DurationHours:     in.DurationHours,
		Objectives:        in.Objectives,
		Context:           in.Context,
		AssessmentData:    in.AssessmentData,
		SynthesisData:     in.SynthesisData,
		ActionPlan:        in.ActionPlan,
		SatisfactionScore: in.SatisfactionScore,
	}
	if in.StartDate != nil {
		p.StartDate = shared.Ptr(in.StartDate.UTC())
	}
	if in.ExpectedEndDate != nil {
		p.ExpectedEndDate = shared.Ptr(in.ExpectedEndDate.UTC())
	}

	updated, err := h.Stores.Bilans.Update(ctx, b.ID, p)
	if err != nil {
		return models.Bilan{}, apperr.FromStore("bilan", err)
	}
	h.Audit.Workflow(ctx, models.ActionBilanUpdated, "bilan", b.ID, b.OrganizationID, changedFields(in))
	return updated, nil
}

// updateStatus moves the bilan one step along its lifecycle. Any other
// target is a Conflict and leaves the bilan untouched.
func (h *Handler) updateStatus(ctx context.Context, a authz.Actor, in statusInput) (models.Bilan, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "bilans.updateStatus")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.ID, bilanpolicy.CanTransition)
	if err != nil {
		return models.Bilan{}, err
	}

	from := b.Status
	if err := workflow.Transition(&b, in.Status, time.Now()); err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return models.Bilan{}, apperr.Conflict("cannot move a bilan from %s to %s", from, in.Status)
		}
		return models.Bilan{}, apperr.Internal(err)
	}

	p := store.BilanPatch{Status: &b.Status}
	if b.Status == models.BilanCompleted {
		p.ActualEndDate = b.ActualEndDate
	}
	updated, err := h.Stores.Bilans.Update(ctx, b.ID, p)
	if err != nil {
		return models.Bilan{}, apperr.FromStore("bilan", err)
	}
	h.Audit.StatusChanged(ctx, updated, from)
	return updated, nil
}

// delete removes the bilan and every record it owns. Audit entries stay.
func (h *Handler) delete(ctx context.Context, a authz.Actor, in idInput) (shared.OK, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "bilans.delete")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.ID, bilanpolicy.CanDelete)
	if err != nil {
		return shared.OK{}, err
	}

	cascade := []struct {
		name string
		fn   func(context.Context, int64) error
	}{
		{"sessions", h.Stores.Sessions.DeleteByBilan},
		{"documents", h.Stores.Documents.DeleteByBilan},
		{"messages", h.Stores.Messages.DeleteByBilan},
		{"recommendations", h.Stores.Recommendations.DeleteByBilan},
		{"skills", h.Stores.Skills.DeleteByBilan},
		{"surveys", h.Stores.Surveys.DeleteByBilan},
	}
	for _, c := range cascade {
		if err := c.fn(ctx, b.ID); err != nil {
			h.Log.Error("bilan cascade delete failed",
				zap.Error(err),
				zap.String("records", c.name),
				zap.Int64("bilan_id", b.ID))
			return shared.OK{}, apperr.From(err)
		}
	}
	if err := h.Stores.Bilans.Delete(ctx, b.ID); err != nil {
		return shared.OK{}, apperr.FromStore("bilan", err)
	}
	h.Audit.Workflow(ctx, models.ActionBilanDeleted, "bilan", b.ID, b.OrganizationID, map[string]any{
		"beneficiary_id": b.BeneficiaryID,
		"status":         b.Status,
	})
	return shared.Done, nil
}

// assignConsultant sets the bilan's consultant. The target must be an active
// CONSULTANT of the bilan's organization; anything else is a Conflict.
func (h *Handler) assignConsultant(ctx context.Context, a authz.Actor, in assignInput) (models.Bilan, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "bilans.assignConsultant")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, bilanpolicy.CanAssignConsultant)
	if err != nil {
		return models.Bilan{}, err
	}
	if _, err := h.checkConsultant(ctx, in.ConsultantID, b.OrganizationID); err != nil {
		return models.Bilan{}, err
	}

	previous := b.ConsultantID
	updated, err := h.Stores.Bilans.Update(ctx, b.ID, store.BilanPatch{ConsultantID: shared.Ptr(in.ConsultantID)})
	if err != nil {
		return models.Bilan{}, apperr.FromStore("bilan", err)
	}
	h.Audit.ConsultantAssigned(ctx, updated, previous)
	return updated, nil
}

// checkConsultant loads user id and requires an active consultant whose
// organization equals orgID (both unset counts as equal).
func (h *Handler) checkConsultant(ctx context.Context, id int64, orgID *int64) (models.User, error) {
	c, err := h.Stores.Users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, apperr.FromStore("consultant", err)
	}
	if c.Role != models.RoleConsultant || !c.Enabled() {
		return models.User{}, apperr.Conflict("user %d is not an active consultant", c.ID)
	}
	if !sameOrg(c.OrganizationID, orgID) {
		return models.User{}, apperr.Conflict("consultant must belong to the bilan's organization")
	}
	return c, nil
}

func sameOrg(x, y *int64) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return *x == *y
}

func changedFields(in updateInput) []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(in.StartDate != nil, "startDate")
	add(in.ExpectedEndDate != nil, "expectedEndDate")
	add(in.DurationHours != nil, "durationHours")
	add(in.Objectives != nil, "objectives")
	add(in.Context != nil, "context")
	add(in.AssessmentData != nil, "assessmentData")
	add(in.SynthesisData != nil, "synthesisData")
	add(in.ActionPlan != nil, "actionPlan")
	add(in.SatisfactionScore != nil, "satisfactionScore")
	return out
}
