// internal/app/features/bilans/types.go
package bilans

import (
	"time"

	"github.com/dalemusser/bilanhub/internal/domain/models"
)

type listInput struct {
	Status         models.BilanStatus `json:"status" validate:"omitempty,oneof=PRELIMINARY INVESTIGATION CONCLUSION COMPLETED ARCHIVED"`
	OrganizationID *int64             `json:"organizationId" validate:"omitempty,min=1"`
	ConsultantID   *int64             `json:"consultantId" validate:"omitempty,min=1"`
	BeneficiaryID  *int64             `json:"beneficiaryId" validate:"omitempty,min=1"`
}

type idInput struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

type createInput struct {
	BeneficiaryID   int64      `json:"beneficiaryId" validate:"required,min=1"`
	ConsultantID    *int64     `json:"consultantId" validate:"omitempty,min=1"`
	OrganizationID  *int64     `json:"organizationId" validate:"omitempty,min=1"`
	StartDate       *time.Time `json:"startDate"`
	ExpectedEndDate *time.Time `json:"expectedEndDate"`
	DurationHours   int        `json:"durationHours" validate:"omitempty,min=1,max=1000"`
	Objectives      string     `json:"objectives" validate:"max=10000"`
	Context         string     `json:"context" validate:"max=10000"`
}

// updateInput carries the editable fields. Status and consultant have their
// own procedures; the beneficiary never changes. actualEndDate is only set by
// the transition to COMPLETED.
type updateInput struct {
	ID                int64        `json:"id" validate:"required,min=1"`
	StartDate         *time.Time   `json:"startDate"`
	ExpectedEndDate   *time.Time   `json:"expectedEndDate"`
	DurationHours     *int         `json:"durationHours" validate:"omitempty,min=1,max=1000"`
	Objectives        *string      `json:"objectives" validate:"omitempty,max=10000"`
	Context           *string      `json:"context" validate:"omitempty,max=10000"`
	AssessmentData    *models.Blob `json:"assessmentData"`
	SynthesisData     *models.Blob `json:"synthesisData"`
	ActionPlan        *models.Blob `json:"actionPlan"`
	SatisfactionScore *int         `json:"satisfactionScore" validate:"omitempty,min=1,max=5"`
}

type statusInput struct {
	ID     int64              `json:"id" validate:"required,min=1"`
	Status models.BilanStatus `json:"status" validate:"required,oneof=PRELIMINARY INVESTIGATION CONCLUSION COMPLETED ARCHIVED"`
}

type assignInput struct {
	BilanID      int64 `json:"bilanId" validate:"required,min=1"`
	ConsultantID int64 `json:"consultantId" validate:"required,min=1"`
}
