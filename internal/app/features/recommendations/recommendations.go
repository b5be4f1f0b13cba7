// internal/app/features/recommendations/recommendations.go
package recommendations

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/advisor"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

type bilanInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
}

type careerInput struct {
	BilanID    int64    `json:"bilanId" validate:"required,min=1"`
	Skills     []string `json:"skills" validate:"max=100,dive,max=200"`
	Interests  []string `json:"interests" validate:"max=100,dive,max=200"`
	Experience string   `json:"experience" validate:"max=10000"`
	Goals      string   `json:"goals" validate:"max=5000"`
}

type skillsInput struct {
	BilanID        int64          `json:"bilanId" validate:"required,min=1"`
	SelfAssessment map[string]int `json:"selfAssessment" validate:"max=200,dive,min=1,max=5"`
	Background     string         `json:"professionalBackground" validate:"max=10000"`
	Achievements   []string       `json:"achievements" validate:"max=100,dive,max=1000"`
}

type actionPlanInput struct {
	BilanID          int64    `json:"bilanId" validate:"required,min=1"`
	CurrentSituation string   `json:"currentSituation" validate:"max=10000"`
	Goals            []string `json:"goals" validate:"max=50,dive,max=1000"`
	Constraints      []string `json:"constraints" validate:"max=50,dive,max=1000"`
	Timeline         string   `json:"timeline" validate:"max=500"`
}

type synthesisResult struct {
	Synthesis string `json:"synthesis"`
}

func (h *Handler) listByBilan(ctx context.Context, a authz.Actor, in bilanInput) ([]models.Recommendation, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "recommendations.listByBilan")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	out, err := h.Stores.Recommendations.ListByBilan(ctx, b.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

// writable loads the bilan for a generation call and charges the caller's
// rate limit once access is established.
func (h *Handler) writable(ctx context.Context, a authz.Actor, id int64) (models.Bilan, error) {
	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, id, recordpolicy.CanWrite)
	if err != nil {
		return models.Bilan{}, err
	}
	if err := h.allow(a); err != nil {
		return models.Bilan{}, err
	}
	return b, nil
}

func (h *Handler) aiFailed(err error, op string, bilanID int64) error {
	h.Log.Warn("AI generation failed", zap.Error(err), zap.String("op", op), zap.Int64("bilan_id", bilanID))
	return apperr.External("AI provider", err)
}

func (h *Handler) generated(ctx context.Context, b models.Bilan, kind string, count int) {
	h.Audit.Workflow(ctx, models.ActionAIResultGenerated, "bilan", b.ID, b.OrganizationID, map[string]any{
		"kind":  kind,
		"count": count,
	})
}

// generateCareer asks for matching occupations and stores each as a JOB
// recommendation, prioritised by match score.
func (h *Handler) generateCareer(ctx context.Context, a authz.Actor, in careerInput) (models.CareerAdvice, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "recommendations.generateCareer")
	defer cancel()

	b, err := h.writable(ctx, a, in.BilanID)
	if err != nil {
		return models.CareerAdvice{}, err
	}
	advice, err := h.Advisor.CareerAdvice(ctx, advisor.CareerInput{
		Skills:     in.Skills,
		Interests:  in.Interests,
		Experience: in.Experience,
		Goals:      in.Goals,
	})
	if err != nil {
		return models.CareerAdvice{}, h.aiFailed(err, "career", b.ID)
	}

	for _, m := range advice.Recommendations {
		meta, err := models.EncodeBlob(m)
		if err != nil {
			return models.CareerAdvice{}, apperr.Internal(err)
		}
		if _, err := h.Stores.Recommendations.Create(ctx, models.Recommendation{
			BilanID:     b.ID,
			Type:        models.RecommendationJob,
			Title:       m.Title,
			Description: m.Description,
			MatchScore:  shared.Ptr(m.MatchScore),
			Priority:    models.MatchPriority(m.MatchScore),
			Metadata:    meta,
		}); err != nil {
			return models.CareerAdvice{}, apperr.From(err)
		}
	}
	h.generated(ctx, b, "career", len(advice.Recommendations))
	return advice, nil
}

// analyzeSkills stores the analysis into the bilan's assessmentData. An
// empty selfAssessment falls back to the saved skills evaluations.
func (h *Handler) analyzeSkills(ctx context.Context, a authz.Actor, in skillsInput) (models.SkillsAnalysis, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "recommendations.analyzeSkills")
	defer cancel()

	b, err := h.writable(ctx, a, in.BilanID)
	if err != nil {
		return models.SkillsAnalysis{}, err
	}
	self := in.SelfAssessment
	if len(self) == 0 {
		evals, err := h.Stores.Skills.ListByBilan(ctx, b.ID)
		if err != nil {
			return models.SkillsAnalysis{}, apperr.From(err)
		}
		self = make(map[string]int, len(evals))
		for _, e := range evals {
			self[e.SkillName] = e.Level
		}
	}
	if len(self) == 0 {
		return models.SkillsAnalysis{}, apperr.ValidationFields(map[string]string{
			"selfAssessment": "no skills to analyze",
		})
	}

	analysis, err := h.Advisor.AnalyzeSkills(ctx, advisor.SkillsInput{
		SelfAssessment: self,
		Background:     in.Background,
		Achievements:   in.Achievements,
	})
	if err != nil {
		return models.SkillsAnalysis{}, h.aiFailed(err, "skills", b.ID)
	}
	if err := h.saveBlob(ctx, b.ID, analysis, func(p *store.BilanPatch, v *models.Blob) { p.AssessmentData = v }); err != nil {
		return models.SkillsAnalysis{}, err
	}
	h.generated(ctx, b, "skills_analysis", 1)
	return analysis, nil
}

// generateActionPlan stores the plan into the bilan's actionPlan and turns
// the first three short-term actions into SKILL recommendations.
func (h *Handler) generateActionPlan(ctx context.Context, a authz.Actor, in actionPlanInput) (models.ActionPlan, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "recommendations.generateActionPlan")
	defer cancel()

	b, err := h.writable(ctx, a, in.BilanID)
	if err != nil {
		return models.ActionPlan{}, err
	}
	plan, err := h.Advisor.ActionPlan(ctx, advisor.ActionPlanInput{
		CurrentSituation: in.CurrentSituation,
		Goals:            in.Goals,
		Constraints:      in.Constraints,
		Timeline:         in.Timeline,
	})
	if err != nil {
		return models.ActionPlan{}, h.aiFailed(err, "action_plan", b.ID)
	}
	if err := h.saveBlob(ctx, b.ID, plan, func(p *store.BilanPatch, v *models.Blob) { p.ActionPlan = v }); err != nil {
		return models.ActionPlan{}, err
	}

	actions := plan.ShortTermActions
	if len(actions) > 3 {
		actions = actions[:3]
	}
	for _, act := range actions {
		meta, err := models.EncodeBlob(act)
		if err != nil {
			return models.ActionPlan{}, apperr.Internal(err)
		}
		if _, err := h.Stores.Recommendations.Create(ctx, models.Recommendation{
			BilanID:     b.ID,
			Type:        models.RecommendationSkill,
			Title:       act.Action,
			Description: fmt.Sprintf("Priorité: %s - Échéance: %s", act.Priority, act.Deadline),
			Priority:    act.PriorityValue(),
			Metadata:    meta,
		}); err != nil {
			return models.ActionPlan{}, apperr.From(err)
		}
	}
	h.generated(ctx, b, "action_plan", len(actions))
	return plan, nil
}

// generateSynthesis writes the synthesis from everything recorded on the
// bilan and stores it into synthesisData.
func (h *Handler) generateSynthesis(ctx context.Context, a authz.Actor, in bilanInput) (synthesisResult, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "recommendations.generateSynthesis")
	defer cancel()

	b, err := h.writable(ctx, a, in.BilanID)
	if err != nil {
		return synthesisResult{}, err
	}
	input, err := h.synthesisInput(ctx, b)
	if err != nil {
		return synthesisResult{}, err
	}
	text, err := h.Advisor.Synthesis(ctx, input)
	if err != nil {
		return synthesisResult{}, h.aiFailed(err, "synthesis", b.ID)
	}
	doc := models.Synthesis{Content: text, GeneratedAt: time.Now().UTC()}
	if err := h.saveBlob(ctx, b.ID, doc, func(p *store.BilanPatch, v *models.Blob) { p.SynthesisData = v }); err != nil {
		return synthesisResult{}, err
	}
	h.generated(ctx, b, "synthesis", 1)
	return synthesisResult{Synthesis: text}, nil
}

func (h *Handler) synthesisInput(ctx context.Context, b models.Bilan) (advisor.SynthesisInput, error) {
	beneficiary, err := h.Stores.Users.GetByID(ctx, b.BeneficiaryID)
	if err != nil {
		return advisor.SynthesisInput{}, apperr.FromStore("beneficiary", err)
	}
	name := beneficiary.Name
	if name == "" {
		name = "Bénéficiaire"
	}
	sessions, err := h.Stores.Sessions.ListByBilan(ctx, b.ID)
	if err != nil {
		return advisor.SynthesisInput{}, apperr.From(err)
	}
	recs, err := h.Stores.Recommendations.ListByBilan(ctx, b.ID)
	if err != nil {
		return advisor.SynthesisInput{}, apperr.From(err)
	}

	in := advisor.SynthesisInput{
		BeneficiaryName: name,
		Objectives:      b.Objectives,
		Recommendations: recs,
	}
	if !b.AssessmentData.IsEmpty() {
		var s models.SkillsAnalysis
		if err := b.AssessmentData.Decode(&s); err != nil {
			h.Log.Warn("stored skills analysis unreadable", zap.Error(err), zap.Int64("bilan_id", b.ID))
		} else {
			in.Skills = &s
		}
	}
	if !b.ActionPlan.IsEmpty() {
		var p models.ActionPlan
		if err := b.ActionPlan.Decode(&p); err != nil {
			h.Log.Warn("stored action plan unreadable", zap.Error(err), zap.Int64("bilan_id", b.ID))
		} else {
			in.Plan = &p
		}
	}
	for _, s := range sessions {
		in.Sessions = append(in.Sessions, advisor.SessionNote{
			Title: s.Title,
			Date:  s.ScheduledAt.Format("02/01/2006"),
			Notes: s.Notes,
		})
	}
	return in, nil
}

func (h *Handler) saveBlob(ctx context.Context, bilanID int64, v any, set func(*store.BilanPatch, *models.Blob)) error {
	blob, err := models.EncodeBlob(v)
	if err != nil {
		return apperr.Internal(err)
	}
	var p store.BilanPatch
	set(&p, &blob)
	if _, err := h.Stores.Bilans.Update(ctx, bilanID, p); err != nil {
		return apperr.FromStore("bilan", err)
	}
	return nil
}
