// internal/app/store/bilans/bilanstore.go
package bilanstore

import (
	"context"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/store/counters"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "bilans"

type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

// Create inserts a bilan. Status defaults to PRELIMINARY and DurationHours
// to the statutory 24 hours.
func (s *Store) Create(ctx context.Context, b models.Bilan) (models.Bilan, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Bilan{}, err
	}
	now := time.Now().UTC()
	b.ID = id
	if b.Status == "" {
		b.Status = models.BilanPreliminary
	}
	if b.DurationHours == 0 {
		b.DurationHours = models.DefaultDurationHours
	}
	if b.StartDate.IsZero() {
		b.StartDate = now
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Bilan{}, store.FromMongo(err)
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Bilan, error) {
	var b models.Bilan
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return models.Bilan{}, store.FromMongo(err)
	}
	return b, nil
}

func bilanFilter(f store.BilanFilter) bson.M {
	filter := bson.M{}
	if f.OrganizationID != nil {
		filter["organization_id"] = *f.OrganizationID
	}
	if f.ConsultantID != nil {
		filter["consultant_id"] = *f.ConsultantID
	}
	if f.BeneficiaryID != nil {
		filter["beneficiary_id"] = *f.BeneficiaryID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// Find returns matching bilans, most recently created first.
func (s *Store) Find(ctx context.Context, f store.BilanFilter) ([]models.Bilan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bilanFilter(f), opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	bilans := []models.Bilan{}
	if err := cur.All(ctx, &bilans); err != nil {
		return nil, store.FromMongo(err)
	}
	return bilans, nil
}

func (s *Store) Count(ctx context.Context, f store.BilanFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bilanFilter(f))
	return n, store.FromMongo(err)
}

// Update applies the non-nil patch fields and returns the stored bilan.
func (s *Store) Update(ctx context.Context, id int64, p store.BilanPatch) (models.Bilan, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.ConsultantID != nil {
		set["consultant_id"] = *p.ConsultantID
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.StartDate != nil {
		set["start_date"] = *p.StartDate
	}
	if p.ExpectedEndDate != nil {
		set["expected_end_date"] = *p.ExpectedEndDate
	}
	if p.ActualEndDate != nil {
		set["actual_end_date"] = *p.ActualEndDate
	}
	if p.DurationHours != nil {
		set["duration_hours"] = *p.DurationHours
	}
	if p.Objectives != nil {
		set["objectives"] = *p.Objectives
	}
	if p.Context != nil {
		set["context"] = *p.Context
	}
	if p.AssessmentData != nil {
		set["assessment_data"] = *p.AssessmentData
	}
	if p.SynthesisData != nil {
		set["synthesis_data"] = *p.SynthesisData
	}
	if p.ActionPlan != nil {
		set["action_plan"] = *p.ActionPlan
	}
	if p.SatisfactionScore != nil {
		set["satisfaction_score"] = *p.SatisfactionScore
	}

	var b models.Bilan
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		return models.Bilan{}, store.FromMongo(err)
	}
	return b, nil
}

// Delete removes a bilan. Deleting a missing bilan yields store.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.FromMongo(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
