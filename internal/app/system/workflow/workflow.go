// internal/app/system/workflow/workflow.go

// Package workflow enforces the bilan lifecycle:
// PRELIMINARY → INVESTIGATION → CONCLUSION → COMPLETED → ARCHIVED.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// ErrInvalidTransition is returned when the target is not the unique
// successor of the current status.
var ErrInvalidTransition = errors.New("invalid status transition")

var successor = map[models.BilanStatus]models.BilanStatus{
	models.BilanPreliminary:   models.BilanInvestigation,
	models.BilanInvestigation: models.BilanConclusion,
	models.BilanConclusion:    models.BilanCompleted,
	models.BilanCompleted:     models.BilanArchived,
}

// Next returns the successor of s. ok is false for ARCHIVED and unknown values.
func Next(s models.BilanStatus) (models.BilanStatus, bool) {
	n, ok := successor[s]
	return n, ok
}

// CanTransition reports whether from → to is a legal single step.
func CanTransition(from, to models.BilanStatus) bool {
	n, ok := successor[from]
	return ok && n == to
}

// Transition moves b to the target status. Reaching COMPLETED stamps
// ActualEndDate with now. On error b is left unchanged.
func Transition(b *models.Bilan, to models.BilanStatus, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, b.Status, to)
	}
	b.Status = to
	if to == models.BilanCompleted {
		t := now.UTC()
		b.ActualEndDate = &t
	}
	return nil
}
