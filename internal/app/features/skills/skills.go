// internal/app/features/skills/skills.go
package skills

import (
	"context"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type evaluationInput struct {
	SkillName  string            `json:"skillName" validate:"required,max=200"`
	Category   string            `json:"category" validate:"max=100"`
	Level      int               `json:"level" validate:"required,min=1,max=5"`
	Frequency  models.Frequency  `json:"frequency" validate:"omitempty,oneof=RARE OCCASIONAL FREQUENT DAILY"`
	Preference models.Preference `json:"preference" validate:"omitempty,oneof=DISLIKE NEUTRAL LIKE LOVE"`
	Notes      string            `json:"notes" validate:"max=5000"`
}

type saveInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
	evaluationInput
}

type batchInput struct {
	BilanID     int64             `json:"bilanId" validate:"required,min=1"`
	Evaluations []evaluationInput `json:"evaluations" validate:"max=500,dive"`
}

type bilanInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
}

type idInput struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

type validateInput struct {
	ID        int64 `json:"id" validate:"required,min=1"`
	Validated bool  `json:"validated"`
}

type saveResult struct {
	Evaluation models.SkillsEvaluation `json:"evaluation"`
	Updated    bool                    `json:"updated"`
}

type batchResult struct {
	Success     bool                      `json:"success"`
	Count       int                       `json:"count"`
	Evaluations []models.SkillsEvaluation `json:"evaluations"`
}

func (e evaluationInput) model(bilanID int64) models.SkillsEvaluation {
	return models.SkillsEvaluation{
		BilanID:    bilanID,
		SkillName:  strings.TrimSpace(e.SkillName),
		Category:   strings.TrimSpace(e.Category),
		Level:      e.Level,
		Frequency:  e.Frequency,
		Preference: e.Preference,
		Notes:      htmlsanitize.StripTags(e.Notes),
	}
}

// save creates or updates the evaluation of one skill. An existing
// evaluation keeps its id.
func (h *Handler) save(ctx context.Context, a authz.Actor, in saveInput) (saveResult, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "skills.save")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanSaveSkills)
	if err != nil {
		return saveResult{}, err
	}
	e, updated, err := h.Stores.Skills.Upsert(ctx, in.evaluationInput.model(b.ID))
	if err != nil {
		return saveResult{}, apperr.From(err)
	}
	return saveResult{Evaluation: e, Updated: updated}, nil
}

// saveBatch replaces every evaluation of the bilan with the given list.
func (h *Handler) saveBatch(ctx context.Context, a authz.Actor, in batchInput) (batchResult, error) {
	seen := make(map[string]bool, len(in.Evaluations))
	evals := make([]models.SkillsEvaluation, 0, len(in.Evaluations))
	for _, e := range in.Evaluations {
		m := e.model(in.BilanID)
		if seen[m.SkillName] {
			return batchResult{}, apperr.Validation("skill %q appears twice", m.SkillName)
		}
		seen[m.SkillName] = true
		evals = append(evals, m)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "skills.saveBatch")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanSaveSkills)
	if err != nil {
		return batchResult{}, err
	}
	out, err := h.Stores.Skills.ReplaceForBilan(ctx, b.ID, evals)
	if err != nil {
		return batchResult{}, apperr.From(err)
	}
	return batchResult{Success: true, Count: len(out), Evaluations: out}, nil
}

func (h *Handler) listByBilan(ctx context.Context, a authz.Actor, in bilanInput) ([]models.SkillsEvaluation, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "skills.listByBilan")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	out, err := h.Stores.Skills.ListByBilan(ctx, b.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

func (h *Handler) load(ctx context.Context, a authz.Actor, id int64, allow shared.BilanRule) (models.SkillsEvaluation, error) {
	e, _, err := shared.Record(ctx, h.Stores.Bilans, a, "skills evaluation",
		func(ctx context.Context) (models.SkillsEvaluation, error) { return h.Stores.Skills.GetByID(ctx, id) },
		func(e models.SkillsEvaluation) int64 { return e.BilanID },
		allow)
	return e, err
}

// validate records the consultant's sign-off on a self-assessed skill.
func (h *Handler) validate(ctx context.Context, a authz.Actor, in validateInput) (models.SkillsEvaluation, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "skills.validate")
	defer cancel()

	e, err := h.load(ctx, a, in.ID, recordpolicy.CanWrite)
	if err != nil {
		return models.SkillsEvaluation{}, err
	}
	out, err := h.Stores.Skills.Update(ctx, e.ID, store.SkillPatch{ValidatedByConsultant: &in.Validated})
	if err != nil {
		return models.SkillsEvaluation{}, apperr.FromStore("skills evaluation", err)
	}
	return out, nil
}

func (h *Handler) delete(ctx context.Context, a authz.Actor, in idInput) (shared.OK, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "skills.delete")
	defer cancel()

	e, err := h.load(ctx, a, in.ID, recordpolicy.CanWrite)
	if err != nil {
		return shared.OK{}, err
	}
	if err := h.Stores.Skills.Delete(ctx, e.ID); err != nil {
		return shared.OK{}, apperr.FromStore("skills evaluation", err)
	}
	return shared.Done, nil
}

func (h *Handler) getStats(ctx context.Context, a authz.Actor, in bilanInput) (Stats, error) {
	evals, err := h.listByBilan(ctx, a, in)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(evals), nil
}
