// internal/domain/models/survey.go
package models

import "time"

// QuestionKind selects how a survey question is answered.
type QuestionKind string

const (
	QuestionRating QuestionKind = "RATING"
	QuestionText   QuestionKind = "TEXT"
)

// SurveyQuestion is one question of a satisfaction survey. Ratings are 1-5.
type SurveyQuestion struct {
	Key   string       `bson:"key" json:"key"`
	Label string       `bson:"label" json:"label"`
	Kind  QuestionKind `bson:"kind" json:"kind"`
}

// SatisfactionSurvey is the Qualiopi satisfaction questionnaire sent for a bilan.
type SatisfactionSurvey struct {
	ID        int64            `bson:"_id" json:"id"`
	BilanID   int64            `bson:"bilan_id" json:"bilanId"`
	Title     string           `bson:"title" json:"title"`
	Questions []SurveyQuestion `bson:"questions" json:"questions"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// SurveyAnswer answers one question by key.
type SurveyAnswer struct {
	QuestionKey string `bson:"question_key" json:"questionKey"`
	Rating      *int   `bson:"rating,omitempty" json:"rating,omitempty"`
	Text        string `bson:"text,omitempty" json:"text,omitempty"`
}

// SurveyResponse is one filled-in survey.
type SurveyResponse struct {
	ID           int64          `bson:"_id" json:"id"`
	SurveyID     int64          `bson:"survey_id" json:"surveyId"`
	BilanID      int64          `bson:"bilan_id" json:"bilanId"`
	RespondentID int64          `bson:"respondent_id" json:"respondentId"`
	Answers      []SurveyAnswer `bson:"answers" json:"answers"`
	Comments     string         `bson:"comments,omitempty" json:"comments,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// AverageRating returns the mean of the rating answers and how many there were.
func (r SurveyResponse) AverageRating() (float64, int) {
	sum, n := 0, 0
	for _, a := range r.Answers {
		if a.Rating != nil {
			sum += *a.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}
