// internal/domain/models/bilan.go
package models

import "time"

// BilanStatus is a stage of the bilan lifecycle.
type BilanStatus string

const (
	BilanPreliminary   BilanStatus = "PRELIMINARY"
	BilanInvestigation BilanStatus = "INVESTIGATION"
	BilanConclusion    BilanStatus = "CONCLUSION"
	BilanCompleted     BilanStatus = "COMPLETED"
	BilanArchived      BilanStatus = "ARCHIVED"
)

// BilanStatuses lists the stages in lifecycle order.
var BilanStatuses = []BilanStatus{
	BilanPreliminary, BilanInvestigation, BilanConclusion, BilanCompleted, BilanArchived,
}

func (s BilanStatus) Valid() bool {
	for _, v := range BilanStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Active reports whether the bilan is still being worked on.
func (s BilanStatus) Active() bool {
	return s == BilanPreliminary || s == BilanInvestigation || s == BilanConclusion
}

// DefaultDurationHours is the statutory length of a bilan de compétences.
const DefaultDurationHours = 24

// Bilan is the aggregate root of the assessment workflow.
//
// BeneficiaryID never changes after creation. AssessmentData, SynthesisData,
// and ActionPlan hold SkillsAnalysis, Synthesis, and ActionPlan documents.
type Bilan struct {
	ID             int64       `bson:"_id" json:"id"`
	BeneficiaryID  int64       `bson:"beneficiary_id" json:"beneficiaryId"`
	ConsultantID   *int64      `bson:"consultant_id,omitempty" json:"consultantId,omitempty"`
	OrganizationID *int64      `bson:"organization_id,omitempty" json:"organizationId,omitempty"`
	Status         BilanStatus `bson:"status" json:"status"`

	StartDate       time.Time  `bson:"start_date" json:"startDate"`
	ExpectedEndDate *time.Time `bson:"expected_end_date,omitempty" json:"expectedEndDate,omitempty"`
	ActualEndDate   *time.Time `bson:"actual_end_date,omitempty" json:"actualEndDate"`
	DurationHours   int        `bson:"duration_hours" json:"durationHours"`

	Objectives        string `bson:"objectives,omitempty" json:"objectives,omitempty"`
	Context           string `bson:"context,omitempty" json:"context,omitempty"`
	AssessmentData    Blob   `bson:"assessment_data,omitempty" json:"assessmentData,omitempty"`
	SynthesisData     Blob   `bson:"synthesis_data,omitempty" json:"synthesisData,omitempty"`
	ActionPlan        Blob   `bson:"action_plan,omitempty" json:"actionPlan,omitempty"`
	SatisfactionScore *int   `bson:"satisfaction_score,omitempty" json:"satisfactionScore,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
