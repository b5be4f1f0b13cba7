// internal/app/store/store.go

// Package store declares the persistence contracts the handlers depend on.
// Each entity has a MongoDB implementation in a subpackage; memstore provides
// an in-memory implementation of the same interfaces for tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/bilanhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrUnavailable is returned when the database cannot be reached.
	ErrUnavailable = errors.New("store: unavailable")
)

// FromMongo translates driver errors into the store sentinels.
// Unrecognised errors are returned unchanged.
func FromMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case wafflemongo.IsDup(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	OrganizationID *int64
	Role           models.Role
	ActiveOnly     bool
	Search         string
}

// UserPatch holds optional field updates; nil fields are left unchanged.
type UserPatch struct {
	Name           *string
	Email          *string
	Phone          *string
	AvatarURL      *string
	Role           *models.Role
	OrganizationID *int64
	IsActive       *bool
	DeletedAt      *time.Time
	LastSignedIn   *time.Time
}

type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByOpenID(ctx context.Context, openID string) (models.User, error)
	// UpsertByOpenID creates the user on first sign-in or refreshes profile
	// fields and LastSignedIn on later ones. Role and organization are only
	// set on creation.
	UpsertByOpenID(ctx context.Context, u models.User) (models.User, error)
	Find(ctx context.Context, f UserFilter) ([]models.User, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
	Update(ctx context.Context, id int64, p UserPatch) (models.User, error)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Organizations                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type OrganizationFilter struct {
	ID         *int64
	ActiveOnly bool
	Search     string
}

type OrganizationPatch struct {
	Name     *string
	Address  *string
	Phone    *string
	Email    *string
	Website  *string
	LogoURL  *string
	Settings *models.Blob
	IsActive *bool
}

type OrganizationStore interface {
	Create(ctx context.Context, o models.Organization) (models.Organization, error)
	GetByID(ctx context.Context, id int64) (models.Organization, error)
	Find(ctx context.Context, f OrganizationFilter) ([]models.Organization, error)
	Update(ctx context.Context, id int64, p OrganizationPatch) (models.Organization, error)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Bilans                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// BilanFilter narrows bilan listings. All set fields must match.
type BilanFilter struct {
	OrganizationID *int64
	ConsultantID   *int64
	BeneficiaryID  *int64
	Status         models.BilanStatus
}

type BilanPatch struct {
	ConsultantID      *int64
	Status            *models.BilanStatus
	StartDate         *time.Time
	ExpectedEndDate   *time.Time
	ActualEndDate     *time.Time
	DurationHours     *int
	Objectives        *string
	Context           *string
	AssessmentData    *models.Blob
	SynthesisData     *models.Blob
	ActionPlan        *models.Blob
	SatisfactionScore *int
}

type BilanStore interface {
	Create(ctx context.Context, b models.Bilan) (models.Bilan, error)
	GetByID(ctx context.Context, id int64) (models.Bilan, error)
	Find(ctx context.Context, f BilanFilter) ([]models.Bilan, error)
	Count(ctx context.Context, f BilanFilter) (int64, error)
	Update(ctx context.Context, id int64, p BilanPatch) (models.Bilan, error)
	Delete(ctx context.Context, id int64) error
}

/*─────────────────────────────────────────────────────────────────────────────*
| Bilan-owned records                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type SessionPatch struct {
	Title           *string
	Description     *string
	ScheduledAt     *time.Time
	DurationMinutes *int
	Status          *models.SessionStatus
	Notes           *string
	Location        *string
}

type SessionStore interface {
	Create(ctx context.Context, s models.Session) (models.Session, error)
	GetByID(ctx context.Context, id int64) (models.Session, error)
	// ListByBilan returns sessions ordered by scheduled time, earliest first.
	ListByBilan(ctx context.Context, bilanID int64) ([]models.Session, error)
	Update(ctx context.Context, id int64, p SessionPatch) (models.Session, error)
	DeleteByBilan(ctx context.Context, bilanID int64) error
}

type DocumentStore interface {
	Create(ctx context.Context, d models.Document) (models.Document, error)
	GetByID(ctx context.Context, id int64) (models.Document, error)
	// ListByBilan returns documents newest first.
	ListByBilan(ctx context.Context, bilanID int64) ([]models.Document, error)
	// Rename replaces the file name shown to users. The storage key is kept.
	Rename(ctx context.Context, id int64, fileName string) (models.Document, error)
	Delete(ctx context.Context, id int64) error
	DeleteByBilan(ctx context.Context, bilanID int64) error
}

type MessageStore interface {
	Create(ctx context.Context, m models.Message) (models.Message, error)
	GetByID(ctx context.Context, id int64) (models.Message, error)
	// ListByBilan returns messages newest first.
	ListByBilan(ctx context.Context, bilanID int64) ([]models.Message, error)
	// MarkRead flags one message as read at the given instant.
	MarkRead(ctx context.Context, id int64, at time.Time) (models.Message, error)
	// MarkBilanRead flags every unread message of the bilan addressed to
	// receiverID and returns how many changed.
	MarkBilanRead(ctx context.Context, bilanID, receiverID int64, at time.Time) (int64, error)
	// CountUnread counts unread messages for receiverID, optionally within one bilan.
	CountUnread(ctx context.Context, receiverID int64, bilanID *int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteByBilan(ctx context.Context, bilanID int64) error
}

type RecommendationStore interface {
	Create(ctx context.Context, r models.Recommendation) (models.Recommendation, error)
	// ListByBilan returns recommendations by priority, then newest first.
	ListByBilan(ctx context.Context, bilanID int64) ([]models.Recommendation, error)
	DeleteByBilan(ctx context.Context, bilanID int64) error
}

type SkillPatch struct {
	ValidatedByConsultant *bool
	Notes                 *string
}

type SkillStore interface {
	// Upsert saves an evaluation keyed by (BilanID, SkillName). The bool is
	// true when an existing row was updated; its id is preserved.
	Upsert(ctx context.Context, e models.SkillsEvaluation) (models.SkillsEvaluation, bool, error)
	GetByID(ctx context.Context, id int64) (models.SkillsEvaluation, error)
	// ListByBilan returns evaluations ordered by category then skill name.
	ListByBilan(ctx context.Context, bilanID int64) ([]models.SkillsEvaluation, error)
	// ReplaceForBilan drops the existing evaluations of the bilan and inserts evals.
	ReplaceForBilan(ctx context.Context, bilanID int64, evals []models.SkillsEvaluation) ([]models.SkillsEvaluation, error)
	Update(ctx context.Context, id int64, p SkillPatch) (models.SkillsEvaluation, error)
	Delete(ctx context.Context, id int64) error
	DeleteByBilan(ctx context.Context, bilanID int64) error
}

type SurveyStore interface {
	CreateSurvey(ctx context.Context, s models.SatisfactionSurvey) (models.SatisfactionSurvey, error)
	GetSurvey(ctx context.Context, id int64) (models.SatisfactionSurvey, error)
	ListSurveysByBilan(ctx context.Context, bilanID int64) ([]models.SatisfactionSurvey, error)
	CreateResponse(ctx context.Context, r models.SurveyResponse) (models.SurveyResponse, error)
	ListResponses(ctx context.Context, surveyID int64) ([]models.SurveyResponse, error)
	ListResponsesByBilans(ctx context.Context, bilanIDs []int64) ([]models.SurveyResponse, error)
	DeleteByBilan(ctx context.Context, bilanID int64) error
}

/*─────────────────────────────────────────────────────────────────────────────*
| Audit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// AuditFilter narrows audit queries. Limit <= 0 means the store default.
type AuditFilter struct {
	OrganizationID *int64
	UserID         *int64
	EntityType     string
	EntityID       *int64
	Category       string
	Limit          int64
}

type AuditStore interface {
	Log(ctx context.Context, e models.AuditLog) error
	Find(ctx context.Context, f AuditFilter) ([]models.AuditLog, error)
}

// Set bundles every store the handlers need.
type Set struct {
	Users           UserStore
	Organizations   OrganizationStore
	Bilans          BilanStore
	Sessions        SessionStore
	Documents       DocumentStore
	Messages        MessageStore
	Recommendations RecommendationStore
	Skills          SkillStore
	Surveys         SurveyStore
	Audit           AuditStore
}
