package recommendations_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/features/recommendations"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/advisor"
	"github.com/dalemusser/bilanhub/internal/app/system/genai"
	"github.com/dalemusser/bilanhub/internal/app/system/ratelimit"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	env         *testutil.MemEnv
	h           http.Handler
	consultant  models.User
	beneficiary models.User
	bilan       models.Bilan

	reply   string
	fail    error
	prompts []genai.Prompt
}

func setup(t *testing.T, limiter *ratelimit.Limiter) *fixture {
	t.Helper()
	env := testutil.NewMemEnv(t)
	ctx := context.Background()
	org := env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	fx := &fixture{env: env}
	fx.consultant = env.Fixtures.CreateConsultant(ctx, "Camille Conseil", org.ID)
	fx.beneficiary = env.Fixtures.CreateBeneficiary(ctx, "Bea Beneficiaire", org.ID)
	fx.bilan = env.Fixtures.CreateBilan(ctx, fx.beneficiary, &fx.consultant)

	adv, err := advisor.New(genai.Func(func(_ context.Context, p genai.Prompt) (string, error) {
		fx.prompts = append(fx.prompts, p)
		return fx.reply, fx.fail
	}))
	if err != nil {
		t.Fatalf("advisor.New: %v", err)
	}
	fx.h = recommendations.Routes(recommendations.NewHandler(env.Mem.Set(), adv, limiter, env.Audit, zap.NewNop()))
	return fx
}

func (fx *fixture) bilanNow(t *testing.T) models.Bilan {
	t.Helper()
	b, err := fx.env.Mem.Set().Bilans.GetByID(context.Background(), fx.bilan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return b
}

func (fx *fixture) recommendations(t *testing.T) []models.Recommendation {
	t.Helper()
	rec := testutil.Call(t, fx.h, "/listByBilan", &fx.beneficiary, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertStatus(t, http.StatusOK)
	var out []models.Recommendation
	rec.DecodeResult(t, &out)
	return out
}

const careerReply = "```json\n" + `{"summary": "Profil polyvalent", "recommendations": [
  {"title": "Chef de projet", "description": "Pilotage", "matchScore": 85},
  {"title": "Formateur", "description": "Transmission", "matchScore": 65},
  {"title": "Libraire", "description": "Commerce", "matchScore": 40}
]}` + "\n```"

func TestGenerateCareer_PrioritisesByScore(t *testing.T) {
	fx := setup(t, nil)
	fx.reply = careerReply

	rec := testutil.Call(t, fx.h, "/generateCareer", &fx.consultant, map[string]any{
		"bilanId": fx.bilan.ID, "skills": []string{"Gestion"}, "goals": "Évoluer",
	})
	rec.AssertStatus(t, http.StatusOK)

	want := map[string]int{"Chef de projet": 3, "Formateur": 2, "Libraire": 1}
	got := fx.recommendations(t)
	if len(got) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(got))
	}
	for _, r := range got {
		if r.Type != models.RecommendationJob || r.Priority != want[r.Title] {
			t.Errorf("%s: type %s priority %d, want JOB %d", r.Title, r.Type, r.Priority, want[r.Title])
		}
	}
	if got[0].Title != "Chef de projet" {
		t.Errorf("highest priority first, got %q", got[0].Title)
	}

	logs, err := fx.env.Mem.Set().Audit.Find(context.Background(), store.AuditFilter{Category: models.AuditCategoryWorkflow})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != models.ActionAIResultGenerated {
		t.Errorf("audit = %+v", logs)
	}
}

func TestGenerate_Rules(t *testing.T) {
	fx := setup(t, nil)
	fx.reply = careerReply

	rec := testutil.Call(t, fx.h, "/generateCareer", &fx.beneficiary, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertError(t, http.StatusForbidden, "FORBIDDEN")

	rec = testutil.Call(t, fx.h, "/generateCareer", &fx.consultant, map[string]any{"bilanId": 999})
	rec.AssertError(t, http.StatusNotFound, "NOT_FOUND")

	if len(fx.prompts) != 0 {
		t.Errorf("denied calls must not reach the model, got %d prompts", len(fx.prompts))
	}
}

func TestGenerate_ModelFailuresAreExternal(t *testing.T) {
	fx := setup(t, nil)

	fx.reply = `{"recommendations": "oops"}`
	rec := testutil.Call(t, fx.h, "/generateCareer", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertError(t, http.StatusBadGateway, "EXTERNAL_FAILURE")

	fx.reply, fx.fail = "", errors.New("provider down")
	rec = testutil.Call(t, fx.h, "/generateSynthesis", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertError(t, http.StatusBadGateway, "EXTERNAL_FAILURE")

	if n := len(fx.recommendations(t)); n != 0 {
		t.Errorf("nothing should be stored, got %d recommendations", n)
	}
}

func TestAnalyzeSkills_FallsBackToEvaluations(t *testing.T) {
	fx := setup(t, nil)
	fx.reply = `{"strengths": ["Écoute"], "areasForImprovement": [], "developmentPlan": "Continuer", "careerPaths": ["RH"]}`

	rec := testutil.Call(t, fx.h, "/analyzeSkills", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertError(t, http.StatusBadRequest, "VALIDATION")

	_, _, err := fx.env.Mem.Set().Skills.Upsert(context.Background(), models.SkillsEvaluation{BilanID: fx.bilan.ID, SkillName: "Écoute active", Level: 4})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	rec = testutil.Call(t, fx.h, "/analyzeSkills", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertStatus(t, http.StatusOK)

	if !strings.Contains(fx.prompts[len(fx.prompts)-1].User, "Écoute active") {
		t.Error("prompt should include the saved evaluations")
	}
	var stored models.SkillsAnalysis
	if err := fx.bilanNow(t).AssessmentData.Decode(&stored); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if stored.DevelopmentPlan != "Continuer" {
		t.Errorf("assessmentData = %+v", stored)
	}
}

func TestGenerateActionPlan_FirstThreeShortTermActions(t *testing.T) {
	fx := setup(t, nil)
	fx.reply = `{"shortTermActions": [
	  {"action": "Mettre à jour le CV", "deadline": "1 mois", "priority": "HIGH"},
	  {"action": "Réseauter", "deadline": "2 mois", "priority": "MEDIUM"},
	  {"action": "Lire", "deadline": "3 mois", "priority": "LOW"},
	  {"action": "Voyager", "deadline": "3 mois", "priority": "HIGH"}
	], "mediumTermActions": [], "longTermActions": []}`

	rec := testutil.Call(t, fx.h, "/generateActionPlan", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID, "goals": []string{"Changer"}})
	rec.AssertStatus(t, http.StatusOK)

	got := fx.recommendations(t)
	if len(got) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(got))
	}
	want := map[string]int{"Mettre à jour le CV": 3, "Réseauter": 2, "Lire": 1}
	for _, r := range got {
		p, ok := want[r.Title]
		if !ok || r.Type != models.RecommendationSkill || r.Priority != p {
			t.Errorf("unexpected recommendation %+v", r)
		}
	}
	if fx.bilanNow(t).ActionPlan.IsEmpty() {
		t.Error("actionPlan should be stored")
	}
}

func TestGenerateSynthesis_StoresDocument(t *testing.T) {
	fx := setup(t, nil)
	fx.reply = "  # Synthèse\n\nBea a progressé.  "

	rec := testutil.Call(t, fx.h, "/generateSynthesis", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertStatus(t, http.StatusOK)
	var out struct {
		Synthesis string `json:"synthesis"`
	}
	rec.DecodeResult(t, &out)
	if out.Synthesis != "# Synthèse\n\nBea a progressé." {
		t.Errorf("synthesis = %q", out.Synthesis)
	}
	if !strings.Contains(fx.prompts[0].User, "Bea Beneficiaire") {
		t.Error("prompt should name the beneficiary")
	}

	var s models.Synthesis
	if err := fx.bilanNow(t).SynthesisData.Decode(&s); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Content != out.Synthesis || s.GeneratedAt.IsZero() {
		t.Errorf("synthesisData = %+v", s)
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	fx := setup(t, ratelimit.New(1, 1))
	fx.reply = careerReply

	testutil.Call(t, fx.h, "/generateCareer", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID}).AssertStatus(t, http.StatusOK)
	rec := testutil.Call(t, fx.h, "/generateCareer", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertError(t, http.StatusTooManyRequests, "TOO_MANY_REQUESTS")
}
