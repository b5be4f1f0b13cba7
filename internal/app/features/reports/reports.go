// internal/app/features/reports/reports.go
package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bilanhub/internal/app/system/objectstore"
	"github.com/dalemusser/bilanhub/internal/app/system/pdfgen"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

const (
	pdfMime          = "application/pdf"
	defaultNotes     = "Aucune note disponible"
	defaultNextSteps = "Continuer l'évaluation des compétences et préparer la prochaine session de travail."
)

type bilanInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
}

type attestationInput struct {
	BilanID    int64    `json:"bilanId" validate:"required,min=1"`
	TotalHours *float64 `json:"totalHours" validate:"omitempty,gt=0,max=1000"`
}

type sessionReportInput struct {
	SessionID int64  `json:"sessionId" validate:"required,min=1"`
	NextSteps string `json:"nextSteps" validate:"max=5000"`
}

// Result is returned by every report procedure.
type Result struct {
	URL      string          `json:"url"`
	Document models.Document `json:"document"`
}

func (h *Handler) name(ctx context.Context, id *int64, fallback string) string {
	if id == nil {
		return fallback
	}
	u, err := h.Stores.Users.GetByID(ctx, *id)
	if err != nil || u.Name == "" {
		if err != nil {
			h.Log.Warn("report participant lookup failed", zap.Error(err), zap.Int64("user_id", *id))
		}
		return fallback
	}
	return u.Name
}

func (h *Handler) info(ctx context.Context, b models.Bilan) pdfgen.BilanInfo {
	return pdfgen.BilanInfo{
		ID:              b.ID,
		BeneficiaryName: h.name(ctx, &b.BeneficiaryID, "Bénéficiaire"),
		ConsultantName:  h.name(ctx, b.ConsultantID, "Consultant"),
		StartDate:       b.StartDate,
		EndDate:         b.ActualEndDate,
		Status:          string(b.Status),
	}
}

// generateSynthesis renders the synthesis from the saved evaluations,
// recommendations, action plan and generated synthesis text.
func (h *Handler) generateSynthesis(ctx context.Context, a authz.Actor, in bilanInput) (Result, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "reports.generateSynthesis")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanWrite)
	if err != nil {
		return Result{}, err
	}
	evals, err := h.Stores.Skills.ListByBilan(ctx, b.ID)
	if err != nil {
		return Result{}, apperr.From(err)
	}
	recs, err := h.Stores.Recommendations.ListByBilan(ctx, b.ID)
	if err != nil {
		return Result{}, apperr.From(err)
	}

	data := pdfgen.SynthesisData{BilanInfo: h.info(ctx, b)}
	for _, e := range evals {
		data.Skills = append(data.Skills, pdfgen.SkillLine{Name: e.SkillName, Level: e.Level})
	}
	for _, r := range recs {
		data.Recommendations = append(data.Recommendations, pdfgen.RecommendationLine{Title: r.Title, Description: r.Description})
	}
	var plan models.ActionPlan
	if err := b.ActionPlan.Decode(&plan); err != nil {
		h.Log.Warn("stored action plan unreadable", zap.Error(err), zap.Int64("bilan_id", b.ID))
	}
	data.ActionPlan = planText(plan)
	var syn models.Synthesis
	if err := b.SynthesisData.Decode(&syn); err != nil {
		h.Log.Warn("stored synthesis unreadable", zap.Error(err), zap.Int64("bilan_id", b.ID))
	}
	data.Content = syn.Content

	return h.publish(ctx, a, b, pdfgen.KindSynthesis, data, models.DocumentSynthesis,
		"synthese.pdf", "Synthèse du bilan")
}

func planText(p models.ActionPlan) string {
	var lines []string
	for _, a := range p.ShortTermActions {
		lines = append(lines, "Court terme : "+a.Action)
	}
	for _, a := range p.MediumTermActions {
		lines = append(lines, "Moyen terme : "+a.Action)
	}
	for _, a := range p.LongTermActions {
		lines = append(lines, "Long terme : "+a.Action)
	}
	return strings.Join(lines, "\n")
}

// generateAttestation needs a COMPLETED or ARCHIVED bilan. Total hours is
// the explicit input, else the completed session time, else the bilan's
// planned duration.
func (h *Handler) generateAttestation(ctx context.Context, a authz.Actor, in attestationInput) (Result, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "reports.generateAttestation")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanWrite)
	if err != nil {
		return Result{}, err
	}
	if b.Status != models.BilanCompleted && b.Status != models.BilanArchived {
		return Result{}, apperr.Conflict("attestation requires a completed bilan, status is %s", b.Status)
	}

	hours, err := h.totalHours(ctx, b, in.TotalHours)
	if err != nil {
		return Result{}, err
	}
	orgName := ""
	if b.OrganizationID != nil {
		o, err := h.Stores.Organizations.GetByID(ctx, *b.OrganizationID)
		if err != nil {
			h.Log.Warn("attestation organization lookup failed", zap.Error(err), zap.Int64("bilan_id", b.ID))
		} else {
			orgName = o.Name
		}
	}

	data := pdfgen.AttestationData{
		BilanInfo:        h.info(ctx, b),
		TotalHours:       hours,
		OrganizationName: orgName,
	}
	return h.publish(ctx, a, b, pdfgen.KindAttestation, data, models.DocumentReport,
		"attestation.pdf", "Attestation de fin de bilan")
}

func (h *Handler) totalHours(ctx context.Context, b models.Bilan, explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	sessions, err := h.Stores.Sessions.ListByBilan(ctx, b.ID)
	if err != nil {
		return 0, apperr.From(err)
	}
	minutes := 0
	for _, s := range sessions {
		if s.Status == models.SessionCompleted {
			minutes += s.DurationMinutes
		}
	}
	if minutes > 0 {
		return float64(minutes) / 60, nil
	}
	return float64(b.DurationHours), nil
}

// generateSessionReport numbers the session by its position in the
// bilan's schedule.
func (h *Handler) generateSessionReport(ctx context.Context, a authz.Actor, in sessionReportInput) (Result, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "reports.generateSessionReport")
	defer cancel()

	s, b, err := shared.Record(ctx, h.Stores.Bilans, a, "session",
		func(ctx context.Context) (models.Session, error) { return h.Stores.Sessions.GetByID(ctx, in.SessionID) },
		func(s models.Session) int64 { return s.BilanID },
		recordpolicy.CanWrite)
	if err != nil {
		return Result{}, err
	}
	all, err := h.Stores.Sessions.ListByBilan(ctx, b.ID)
	if err != nil {
		return Result{}, apperr.From(err)
	}
	number := len(all)
	for i, x := range all {
		if x.ID == s.ID {
			number = i + 1
			break
		}
	}

	notes := s.Notes
	if notes == "" {
		notes = defaultNotes
	}
	next := htmlsanitize.StripTags(in.NextSteps)
	if next == "" {
		next = defaultNextSteps
	}
	data := pdfgen.SessionReportData{
		SessionNumber:   number,
		BilanID:         b.ID,
		BeneficiaryName: h.name(ctx, &s.BeneficiaryID, "Bénéficiaire"),
		ConsultantName:  h.name(ctx, s.ConsultantID, "Consultant"),
		Date:            s.ScheduledAt,
		DurationMinutes: s.DurationMinutes,
		Notes:           notes,
		NextSteps:       next,
	}
	return h.publish(ctx, a, b, pdfgen.KindSessionReport, data, models.DocumentReport,
		fmt.Sprintf("session-%d.pdf", number), fmt.Sprintf("Compte rendu de la session %d", number))
}

// publish renders kind, uploads the PDF under the bilan's reports prefix
// and records it as a Document.
func (h *Handler) publish(ctx context.Context, a authz.Actor, b models.Bilan, kind pdfgen.Kind, data any,
	docType models.DocumentType, fileName, title string) (Result, error) {
	pdf, err := h.PDF.Render(kind, data)
	if err != nil {
		h.Log.Error("pdf render failed", zap.Error(err), zap.String("kind", string(kind)), zap.Int64("bilan_id", b.ID))
		return Result{}, apperr.External("PDF renderer", err)
	}
	key := objectstore.Key(b.ID, "reports", fileName)
	url, err := h.Objects.Put(ctx, key, pdf, pdfMime)
	if err != nil {
		h.Log.Error("report upload failed", zap.Error(err), zap.String("key", key))
		return Result{}, apperr.External("object storage", err)
	}
	doc, err := h.Stores.Documents.Create(ctx, models.Document{
		BilanID:    b.ID,
		Type:       docType,
		Title:      title,
		FileName:   fileName,
		StorageKey: key,
		URL:        url,
		FileSize:   int64(len(pdf)),
		MimeType:   pdfMime,
		UploadedBy: a.ID,
	})
	if err != nil {
		return Result{}, apperr.From(err)
	}
	h.Audit.Workflow(ctx, models.ActionReportGenerated, "document", doc.ID, b.OrganizationID, map[string]any{
		"kind":     string(kind),
		"bilan_id": b.ID,
	})
	return Result{URL: url, Document: doc}, nil
}
