// internal/domain/models/session.go
package models

import "time"

// SessionStatus is the scheduling state of an appointment.
type SessionStatus string

const (
	SessionScheduled   SessionStatus = "SCHEDULED"
	SessionCompleted   SessionStatus = "COMPLETED"
	SessionCancelled   SessionStatus = "CANCELLED"
	SessionRescheduled SessionStatus = "RESCHEDULED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled, SessionRescheduled:
		return true
	}
	return false
}

const (
	DefaultSessionMinutes = 60
	MinSessionMinutes     = 15
	MaxSessionMinutes     = 480
)

// Session is an appointment between the consultant and the beneficiary of a
// bilan. Participant ids are copied from the bilan when the session is created.
type Session struct {
	ID              int64         `bson:"_id" json:"id"`
	BilanID         int64         `bson:"bilan_id" json:"bilanId"`
	ConsultantID    *int64        `bson:"consultant_id,omitempty" json:"consultantId,omitempty"`
	BeneficiaryID   int64         `bson:"beneficiary_id" json:"beneficiaryId"`
	Title           string        `bson:"title" json:"title"`
	Description     string        `bson:"description,omitempty" json:"description,omitempty"`
	ScheduledAt     time.Time     `bson:"scheduled_at" json:"scheduledAt"`
	DurationMinutes int           `bson:"duration_minutes" json:"durationMinutes"`
	Status          SessionStatus `bson:"status" json:"status"`
	Notes           string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Location        string        `bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
