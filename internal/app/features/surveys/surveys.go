// internal/app/features/surveys/surveys.go
package surveys

import (
	"context"
	"math"
	"strings"

	"github.com/dalemusser/bilanhub/internal/app/features/shared"
	"github.com/dalemusser/bilanhub/internal/app/policy/recordpolicy"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/apperr"
	"github.com/dalemusser/bilanhub/internal/app/system/authz"
	"github.com/dalemusser/bilanhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.uber.org/zap"
)

type questionInput struct {
	Key   string              `json:"key" validate:"required,max=64"`
	Label string              `json:"label" validate:"required,max=500"`
	Kind  models.QuestionKind `json:"kind" validate:"required,oneof=RATING TEXT"`
}

type createInput struct {
	BilanID   int64           `json:"bilanId" validate:"required,min=1"`
	Title     string          `json:"title" validate:"max=200"`
	Questions []questionInput `json:"questions" validate:"max=50,dive"`
}

type bilanInput struct {
	BilanID int64 `json:"bilanId" validate:"required,min=1"`
}

type answerInput struct {
	QuestionKey string `json:"questionKey" validate:"required"`
	Rating      *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Text        string `json:"text" validate:"max=5000"`
}

type responseInput struct {
	SurveyID int64         `json:"surveyId" validate:"required,min=1"`
	Answers  []answerInput `json:"answers" validate:"required,min=1,max=50,dive"`
	Comments string        `json:"comments" validate:"max=5000"`
}

type surveyInput struct {
	SurveyID int64 `json:"surveyId" validate:"required,min=1"`
}

// create sends a survey for a bilan. Without questions the default
// Qualiopi questionnaire is used.
func (h *Handler) create(ctx context.Context, a authz.Actor, in createInput) (models.SatisfactionSurvey, error) {
	questions := DefaultQuestions
	if len(in.Questions) > 0 {
		questions = make([]models.SurveyQuestion, 0, len(in.Questions))
		keys := make(map[string]bool, len(in.Questions))
		for _, q := range in.Questions {
			if keys[q.Key] {
				return models.SatisfactionSurvey{}, apperr.Validation("question key %q appears twice", q.Key)
			}
			keys[q.Key] = true
			questions = append(questions, models.SurveyQuestion{
				Key:   q.Key,
				Label: htmlsanitize.StripTags(q.Label),
				Kind:  q.Kind,
			})
		}
	}
	title := htmlsanitize.StripTags(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "surveys.create")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanWrite)
	if err != nil {
		return models.SatisfactionSurvey{}, err
	}
	s, err := h.Stores.Surveys.CreateSurvey(ctx, models.SatisfactionSurvey{
		BilanID:   b.ID,
		Title:     title,
		Questions: questions,
	})
	if err != nil {
		return models.SatisfactionSurvey{}, apperr.From(err)
	}
	return s, nil
}

func (h *Handler) listByBilan(ctx context.Context, a authz.Actor, in bilanInput) ([]models.SatisfactionSurvey, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "surveys.listByBilan")
	defer cancel()

	b, err := shared.Bilan(ctx, h.Stores.Bilans, a, in.BilanID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	out, err := h.Stores.Surveys.ListSurveysByBilan(ctx, b.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	return out, nil
}

func (h *Handler) load(ctx context.Context, a authz.Actor, id int64, allow shared.BilanRule) (models.SatisfactionSurvey, models.Bilan, error) {
	return shared.Record(ctx, h.Stores.Bilans, a, "survey",
		func(ctx context.Context) (models.SatisfactionSurvey, error) { return h.Stores.Surveys.GetSurvey(ctx, id) },
		func(s models.SatisfactionSurvey) int64 { return s.BilanID },
		allow)
}

// submitResponse records the beneficiary's answers. Every RATING question
// needs a rating, answers must name known questions, and a survey is
// answered once. The bilan's satisfactionScore becomes the rounded mean.
func (h *Handler) submitResponse(ctx context.Context, a authz.Actor, in responseInput) (models.SurveyResponse, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "surveys.submitResponse")
	defer cancel()

	s, b, err := h.load(ctx, a, in.SurveyID, recordpolicy.CanAnswerSurvey)
	if err != nil {
		return models.SurveyResponse{}, err
	}
	answers, err := checkAnswers(s.Questions, in.Answers)
	if err != nil {
		return models.SurveyResponse{}, err
	}

	previous, err := h.Stores.Surveys.ListResponses(ctx, s.ID)
	if err != nil {
		return models.SurveyResponse{}, apperr.From(err)
	}
	for _, r := range previous {
		if r.RespondentID == a.ID {
			return models.SurveyResponse{}, apperr.Conflict("survey already answered")
		}
	}

	r, err := h.Stores.Surveys.CreateResponse(ctx, models.SurveyResponse{
		SurveyID:     s.ID,
		BilanID:      b.ID,
		RespondentID: a.ID,
		Answers:      answers,
		Comments:     htmlsanitize.StripTags(in.Comments),
	})
	if err != nil {
		return models.SurveyResponse{}, apperr.From(err)
	}

	if avg, n := r.AverageRating(); n > 0 {
		score := int(math.Round(avg))
		if _, err := h.Stores.Bilans.Update(ctx, b.ID, store.BilanPatch{SatisfactionScore: &score}); err != nil {
			h.Log.Warn("satisfaction score not saved", zap.Error(err), zap.Int64("bilan_id", b.ID))
		}
	}
	return r, nil
}

func checkAnswers(questions []models.SurveyQuestion, in []answerInput) ([]models.SurveyAnswer, error) {
	kinds := make(map[string]models.QuestionKind, len(questions))
	for _, q := range questions {
		kinds[q.Key] = q.Kind
	}

	fields := map[string]string{}
	got := make(map[string]bool, len(in))
	out := make([]models.SurveyAnswer, 0, len(in))
	for _, ans := range in {
		kind, ok := kinds[ans.QuestionKey]
		switch {
		case !ok:
			fields[ans.QuestionKey] = "unknown question"
			continue
		case got[ans.QuestionKey]:
			fields[ans.QuestionKey] = "answered twice"
			continue
		case kind == models.QuestionRating && ans.Rating == nil:
			fields[ans.QuestionKey] = "rating required"
			continue
		}
		got[ans.QuestionKey] = true
		a := models.SurveyAnswer{QuestionKey: ans.QuestionKey}
		if kind == models.QuestionRating {
			a.Rating = ans.Rating
		} else {
			a.Text = strings.TrimSpace(htmlsanitize.StripTags(ans.Text))
		}
		out = append(out, a)
	}
	for key, kind := range kinds {
		if kind == models.QuestionRating && !got[key] {
			if _, bad := fields[key]; !bad {
				fields[key] = "rating required"
			}
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}
	return out, nil
}

// listResponses returns the survey's responses. A beneficiary only sees
// their own.
func (h *Handler) listResponses(ctx context.Context, a authz.Actor, in surveyInput) ([]models.SurveyResponse, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), h.Log, "surveys.listResponses")
	defer cancel()

	s, _, err := h.load(ctx, a, in.SurveyID, recordpolicy.CanRead)
	if err != nil {
		return nil, err
	}
	all, err := h.Stores.Surveys.ListResponses(ctx, s.ID)
	if err != nil {
		return nil, apperr.From(err)
	}
	if !a.IsBeneficiary() {
		return all, nil
	}
	out := []models.SurveyResponse{}
	for _, r := range all {
		if r.RespondentID == a.ID {
			out = append(out, r)
		}
	}
	return out, nil
}
