package reports_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/features/reports"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/bilanhub/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	env         *testutil.MemEnv
	h           http.Handler
	root        string
	consultant  models.User
	beneficiary models.User
	bilan       models.Bilan

	kinds []pdfgen.Kind
	data  []any
	fail  error
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewMemEnv(t)
	ctx := context.Background()
	org := env.Fixtures.CreateOrganization(ctx, "Cabinet Alpha")
	fx := &fixture{env: env, root: t.TempDir()}
	fx.consultant = env.Fixtures.CreateConsultant(ctx, "Camille Conseil", org.ID)
	fx.beneficiary = env.Fixtures.CreateBeneficiary(ctx, "Bea Beneficiaire", org.ID)
	fx.bilan = env.Fixtures.CreateBilan(ctx, fx.beneficiary, &fx.consultant)

	local, err := objectstore.NewLocal(fx.root, "https://files.test")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	render := pdfgen.Func(func(kind pdfgen.Kind, data any) ([]byte, error) {
		fx.kinds = append(fx.kinds, kind)
		fx.data = append(fx.data, data)
		if fx.fail != nil {
			return nil, fx.fail
		}
		return []byte("%PDF-1.7 " + string(kind)), nil
	})
	fx.h = reports.Routes(reports.NewHandler(env.Mem.Set(), local, render, env.Audit, zap.NewNop()))
	return fx
}

func (fx *fixture) addSession(t *testing.T, minutes int, status models.SessionStatus, at time.Time) models.Session {
	t.Helper()
	s, err := fx.env.Mem.Set().Sessions.Create(context.Background(), models.Session{
		BilanID:         fx.bilan.ID,
		ConsultantID:    fx.bilan.ConsultantID,
		BeneficiaryID:   fx.beneficiary.ID,
		Title:           "Entretien",
		ScheduledAt:     at,
		DurationMinutes: minutes,
		Status:          status,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestGenerateSynthesis_StoresDocument(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	if _, _, err := fx.env.Mem.Set().Skills.Upsert(ctx, models.SkillsEvaluation{BilanID: fx.bilan.ID, SkillName: "Négociation", Level: 4}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rec := testutil.Call(t, fx.h, "/generateSynthesis", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertStatus(t, http.StatusOK)
	var out reports.Result
	rec.DecodeResult(t, &out)

	if out.Document.Type != models.DocumentSynthesis || out.Document.URL != out.URL {
		t.Errorf("document = %+v", out.Document)
	}
	prefix := "bilans/" + itoa(fx.bilan.ID) + "/reports/synthese-"
	if !strings.HasPrefix(out.Document.StorageKey, prefix) || !strings.HasSuffix(out.Document.StorageKey, ".pdf") {
		t.Errorf("storageKey = %q", out.Document.StorageKey)
	}
	if _, err := os.Stat(filepath.Join(fx.root, filepath.FromSlash(out.Document.StorageKey))); err != nil {
		t.Errorf("pdf not written: %v", err)
	}

	data, ok := fx.data[0].(pdfgen.SynthesisData)
	if !ok {
		t.Fatalf("render data is %T", fx.data[0])
	}
	if data.BeneficiaryName != "Bea Beneficiaire" || data.ConsultantName != "Camille Conseil" {
		t.Errorf("names = %q / %q", data.BeneficiaryName, data.ConsultantName)
	}
	if len(data.Skills) != 1 || data.Skills[0].Name != "Négociation" {
		t.Errorf("skills = %+v", data.Skills)
	}

	docs, err := fx.env.Mem.Set().Documents.ListByBilan(ctx, fx.bilan.ID)
	if err != nil || len(docs) != 1 {
		t.Errorf("documents = %v, %v", docs, err)
	}
}

func TestGenerateSynthesis_Rules(t *testing.T) {
	fx := setup(t)
	testutil.Call(t, fx.h, "/generateSynthesis", &fx.beneficiary, map[string]any{"bilanId": fx.bilan.ID}).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/generateSynthesis", &fx.consultant, map[string]any{"bilanId": 999}).AssertError(t, http.StatusNotFound, "NOT_FOUND")

	fx.fail = errors.New("font missing")
	testutil.Call(t, fx.h, "/generateSynthesis", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID}).AssertError(t, http.StatusBadGateway, "EXTERNAL_FAILURE")
}

func TestGenerateAttestation(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	rec := testutil.Call(t, fx.h, "/generateAttestation", &fx.consultant, map[string]any{"bilanId": fx.bilan.ID})
	rec.AssertError(t, http.StatusConflict, "CONFLICT")

	fx.env.Fixtures.SetBilanStatus(ctx, fx.bilan.ID, models.BilanCompleted)

	hours := func(body map[string]any) float64 {
		t.Helper()
		body["bilanId"] = fx.bilan.ID
		n := len(fx.data)
		testutil.Call(t, fx.h, "/generateAttestation", &fx.consultant, body).AssertStatus(t, http.StatusOK)
		data, ok := fx.data[n].(pdfgen.AttestationData)
		if !ok {
			t.Fatalf("render data is %T", fx.data[n])
		}
		if data.OrganizationName != "Cabinet Alpha" {
			t.Errorf("organization = %q", data.OrganizationName)
		}
		return data.TotalHours
	}

	if got := hours(map[string]any{}); got != models.DefaultDurationHours {
		t.Errorf("no sessions: hours = %v, want %d", got, models.DefaultDurationHours)
	}
	fx.addSession(t, 90, models.SessionCompleted, at)
	fx.addSession(t, 120, models.SessionCompleted, at.Add(24*time.Hour))
	fx.addSession(t, 60, models.SessionCancelled, at.Add(48*time.Hour))
	if got := hours(map[string]any{}); got != 3.5 {
		t.Errorf("completed sessions: hours = %v, want 3.5", got)
	}
	if got := hours(map[string]any{"totalHours": 20}); got != 20 {
		t.Errorf("explicit: hours = %v, want 20", got)
	}
}

func TestGenerateSessionReport_NumbersBySchedule(t *testing.T) {
	fx := setup(t)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	fx.addSession(t, 60, models.SessionCompleted, at)
	second := fx.addSession(t, 60, models.SessionScheduled, at.Add(7*24*time.Hour))

	rec := testutil.Call(t, fx.h, "/generateSessionReport", &fx.consultant, map[string]any{"sessionId": second.ID})
	rec.AssertStatus(t, http.StatusOK)
	var out reports.Result
	rec.DecodeResult(t, &out)
	if out.Document.Type != models.DocumentReport || out.Document.Title != "Compte rendu de la session 2" {
		t.Errorf("document = %+v", out.Document)
	}

	data := fx.data[0].(pdfgen.SessionReportData)
	if data.SessionNumber != 2 || data.Notes == "" || data.NextSteps == "" {
		t.Errorf("data = %+v", data)
	}

	testutil.Call(t, fx.h, "/generateSessionReport", &fx.beneficiary, map[string]any{"sessionId": second.ID}).AssertError(t, http.StatusForbidden, "FORBIDDEN")
	testutil.Call(t, fx.h, "/generateSessionReport", &fx.consultant, map[string]any{"sessionId": 999}).AssertError(t, http.StatusNotFound, "NOT_FOUND")
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
