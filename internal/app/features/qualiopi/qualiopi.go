// internal/app/features/qualiopi/qualiopi.go
package qualiopi

import (
	"context"
	"math"

	"github.com/dalemusser/bilanhub/internal/app/policy/orgpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

// orgInput names the organization; it defaults to the caller's own.
type orgInput struct {
	OrganizationID *int64 `json:"organizationId" validate:"omitempty,min=1"`
}

type statusInput struct {
	OrganizationID *int64                 `json:"organizationId" validate:"omitempty,min=1"`
	Number         int                    `json:"number" validate:"required,min=1,max=32"`
	Status         models.IndicatorStatus `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}

// Indicator is a referential entry with the organization's progress.
type Indicator struct {
	Definition
	Status models.IndicatorStatus `json:"status"`
}

// Summary counts applicable indicators by status.
type Summary struct {
	Total          int `json:"total"`
	Done           int `json:"done"`
	InProgress     int `json:"inProgress"`
	Todo           int `json:"todo"`
	CompletionRate int `json:"completionRate"`
}

type Indicators struct {
	OrganizationID int64       `json:"organizationId"`
	Indicators     []Indicator `json:"indicators"`
	Summary        Summary     `json:"summary"`
}

// Metrics are the outcome figures an audit asks for.
type Metrics struct {
	TotalBilans         int     `json:"totalBilans"`
	ActiveBilans        int     `json:"activeBilans"`
	FinishedBilans      int     `json:"finishedBilans"`
	CompletionRate      int     `json:"completionRate"`
	AverageDurationDays float64 `json:"averageDurationDays"`
	SurveyResponses     int     `json:"surveyResponses"`
	SurveyResponseRate  int     `json:"surveyResponseRate"`
	AverageSatisfaction float64 `json:"averageSatisfaction"`
}

func (h *Handler) organization(ctx context.Context, a authz.Actor, id *int64, allow func(authz.Actor, models.Organization) bool) (models.Organization, error) {
	if id == nil {
		id = a.OrganizationID
	}
	if id == nil {
		return models.Organization{}, apperr.ValidationFields(map[string]string{"organizationId": "required"})
	}
	o, err := h.Stores.Organizations.GetByID(ctx, *id)
	if err != nil {
		return models.Organization{}, apperr.FromStore("organization", err)
	}
	if !allow(a, o) {
		return models.Organization{}, apperr.Forbidden("not allowed on this organization")
	}
	return o, nil
}

func (h *Handler) settings(o models.Organization) models.OrgSettings {
	var s models.OrgSettings
	if err := o.Settings.Decode(&s); err != nil {
		h.Log.Warn("organization settings unreadable", zap.Error(err), zap.Int64("organization_id", o.ID))
	}
	return s
}

// Build merges the referential with the stored statuses. Unset indicators
// are TODO; the summary only counts applicable indicators.
func Build(o models.Organization, s models.OrgSettings) Indicators {
	out := Indicators{OrganizationID: o.ID, Indicators: make([]Indicator, 0, len(Referential))}
	for _, d := range Referential {
		st, ok := s.QualiopiIndicators[d.Number]
		if !ok || !st.Valid() {
			st = models.IndicatorTodo
		}
		out.Indicators = append(out.Indicators, Indicator{Definition: d, Status: st})
		if !d.Applicable {
			continue
		}
		out.Summary.Total++
		switch st {
		case models.IndicatorDone:
			out.Summary.Done++
		case models.IndicatorInProgress:
			out.Summary.InProgress++
		default:
			out.Summary.Todo++
		}
	}
	out.Summary.CompletionRate = percent(out.Summary.Done, out.Summary.Total)
	return out
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

func (h *Handler) indicators(ctx context.Context, a authz.Actor, in orgInput) (Indicators, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "qualiopi.indicators")
	defer cancel()

	o, err := h.organization(ctx, a, in.OrganizationID, orgpolicy.CanRead)
	if err != nil {
		return Indicators{}, err
	}
	return Build(o, h.settings(o)), nil
}

// setIndicatorStatus rewrites the organization's settings document with
// the new status. Other settings keys survive the rewrite.
func (h *Handler) setIndicatorStatus(ctx context.Context, a authz.Actor, in statusInput) (Indicators, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "qualiopi.setIndicatorStatus")
	defer cancel()

	o, err := h.organization(ctx, a, in.OrganizationID, orgpolicy.CanUpdate)
	if err != nil {
		return Indicators{}, err
	}

	raw := map[string]any{}
	if err := o.Settings.Decode(&raw); err != nil {
		h.Log.Warn("organization settings unreadable, resetting", zap.Error(err), zap.Int64("organization_id", o.ID))
		raw = map[string]any{}
	}
	s := h.settings(o)
	if s.QualiopiIndicators == nil {
		s.QualiopiIndicators = map[int]models.IndicatorStatus{}
	}
	previous := s.QualiopiIndicators[in.Number]
	s.QualiopiIndicators[in.Number] = in.Status
	raw["qualiopiIndicators"] = s.QualiopiIndicators

	blob, err := models.EncodeBlob(raw)
	if err != nil {
		return Indicators{}, apperr.Internal(err)
	}
	out, err := h.Stores.Organizations.Update(ctx, o.ID, store.OrganizationPatch{Settings: &blob})
	if err != nil {
		return Indicators{}, apperr.FromStore("organization", err)
	}
	h.Audit.Admin(ctx, models.ActionIndicatorUpdated, "organization", o.ID, &o.ID, map[string]any{
		"indicator": in.Number,
		"from":      previous,
		"to":        in.Status,
	})
	return Build(out, s), nil
}

// metrics derives outcome figures from the organization's bilans and
// satisfaction responses. Finished means COMPLETED or ARCHIVED.
func (h *Handler) metrics(ctx context.Context, a authz.Actor, in orgInput) (Metrics, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "qualiopi.metrics")
	defer cancel()

	o, err := h.organization(ctx, a, in.OrganizationID, orgpolicy.CanRead)
	if err != nil {
		return Metrics{}, err
	}
	bilans, err := h.Stores.Bilans.Find(ctx, store.BilanFilter{OrganizationID: &o.ID})
	if err != nil {
		return Metrics{}, apperr.From(err)
	}

	var m Metrics
	m.TotalBilans = len(bilans)
	ids := make([]int64, 0, len(bilans))
	var days float64
	dated := 0
	for _, b := range bilans {
		ids = append(ids, b.ID)
		if b.Status.Active() {
			m.ActiveBilans++
			continue
		}
		m.FinishedBilans++
		if b.ActualEndDate != nil {
			days += b.ActualEndDate.Sub(b.StartDate).Hours() / 24
			dated++
		}
	}
	m.CompletionRate = percent(m.FinishedBilans, m.TotalBilans)
	if dated > 0 {
		m.AverageDurationDays = math.Round(days/float64(dated)*10) / 10
	}
	if len(ids) == 0 {
		return m, nil
	}

	responses, err := h.Stores.Surveys.ListResponsesByBilans(ctx, ids)
	if err != nil {
		return Metrics{}, apperr.From(err)
	}
	m.SurveyResponses = len(responses)
	answered := map[int64]bool{}
	var sum float64
	rated := 0
	for _, r := range responses {
		answered[r.BilanID] = true
		if avg, n := r.AverageRating(); n > 0 {
			sum += avg
			rated++
		}
	}
	m.SurveyResponseRate = percent(len(answered), m.FinishedBilans)
	if m.SurveyResponseRate > 100 {
		m.SurveyResponseRate = 100
	}
	if rated > 0 {
		m.AverageSatisfaction = math.Round(sum/float64(rated)*10) / 10
	}
	return m, nil
}
