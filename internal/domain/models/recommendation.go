// internal/domain/models/recommendation.go
package models

import "time"

// RecommendationType classifies a recommendation.
type RecommendationType string

const (
	RecommendationJob           RecommendationType = "JOB"
	RecommendationTraining      RecommendationType = "TRAINING"
	RecommendationSkill         RecommendationType = "SKILL"
	RecommendationCertification RecommendationType = "CERTIFICATION"
)

func (t RecommendationType) Valid() bool {
	switch t {
	case RecommendationJob, RecommendationTraining, RecommendationSkill, RecommendationCertification:
		return true
	}
	return false
}

// Recommendation priorities.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Recommendation is a career, training, or skill suggestion for a bilan.
// Metadata holds the CareerMatch or PlannedAction it was derived from.
type Recommendation struct {
	ID          int64              `bson:"_id" json:"id"`
	BilanID     int64              `bson:"bilan_id" json:"bilanId"`
	Type        RecommendationType `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	RomeCode    string             `bson:"rome_code,omitempty" json:"romeCode,omitempty"`
	MatchScore  *int               `bson:"match_score,omitempty" json:"matchScore,omitempty"`
	Priority    int                `bson:"priority" json:"priority"`
	Metadata    Blob               `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
