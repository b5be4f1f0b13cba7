// internal/app/store/skills/skillstore.go
package skillstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/store/counters"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "skills_evaluations"

// Store manages skills evaluations. (bilan_id, skill_name) is unique.
type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

// Upsert updates the evaluation with the same bilan and skill name, keeping
// its id, or inserts a new one. Losing an insert race falls back to update.
func (s *Store) Upsert(ctx context.Context, e models.SkillsEvaluation) (models.SkillsEvaluation, bool, error) {
	key := bson.M{"bilan_id": e.BilanID, "skill_name": e.SkillName}

	updated, err := s.updateExisting(ctx, key, e)
	if err == nil {
		return updated, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.SkillsEvaluation{}, false, err
	}

	created, err := s.insert(ctx, e)
	if errors.Is(err, store.ErrDuplicate) {
		updated, err := s.updateExisting(ctx, key, e)
		return updated, err == nil, err
	}
	return created, false, err
}

func (s *Store) updateExisting(ctx context.Context, key bson.M, e models.SkillsEvaluation) (models.SkillsEvaluation, error) {
	set := bson.M{
		"category":   e.Category,
		"level":      e.Level,
		"frequency":  e.Frequency,
		"preference": e.Preference,
		"notes":      e.Notes,
		"updated_at": time.Now().UTC(),
	}
	var out models.SkillsEvaluation
	err := s.c.FindOneAndUpdate(ctx, key, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.SkillsEvaluation{}, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) insert(ctx context.Context, e models.SkillsEvaluation) (models.SkillsEvaluation, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.SkillsEvaluation{}, err
	}
	now := time.Now().UTC()
	e.ID = id
	e.ValidatedByConsultant = false
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.SkillsEvaluation{}, store.FromMongo(err)
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.SkillsEvaluation, error) {
	var e models.SkillsEvaluation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.SkillsEvaluation{}, store.FromMongo(err)
	}
	return e, nil
}

func (s *Store) ListByBilan(ctx context.Context, bilanID int64) ([]models.SkillsEvaluation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "skill_name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"bilan_id": bilanID}, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.SkillsEvaluation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

// ReplaceForBilan deletes the bilan's evaluations and inserts evals in order.
// The two steps are not atomic.
func (s *Store) ReplaceForBilan(ctx context.Context, bilanID int64, evals []models.SkillsEvaluation) ([]models.SkillsEvaluation, error) {
	if err := s.DeleteByBilan(ctx, bilanID); err != nil {
		return nil, err
	}
	out := make([]models.SkillsEvaluation, 0, len(evals))
	for _, e := range evals {
		e.BilanID = bilanID
		created, err := s.insert(ctx, e)
		if err != nil {
			return out, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id int64, p store.SkillPatch) (models.SkillsEvaluation, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.ValidatedByConsultant != nil {
		set["validated_by_consultant"] = *p.ValidatedByConsultant
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	var out models.SkillsEvaluation
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.SkillsEvaluation{}, store.FromMongo(err)
	}
	return out, nil
}

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

func (s *Store) DeleteByBilan(ctx context.Context, bilanID int64) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"bilan_id": bilanID})
	return store.FromMongo(err)
}
