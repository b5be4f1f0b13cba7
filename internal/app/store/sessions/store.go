// internal/app/store/sessions/store.go
package sessionstore

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

const collection = "sessions"

// Store manages bilan appointments.
type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

func (s *Store) Create(ctx context.Context, sess models.Session) (models.Session, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Session{}, err
	}
	now := time.Now().UTC()
	sess.ID = id
	if sess.Status == "" {
		sess.Status = models.SessionScheduled
	}
	if sess.DurationMinutes == 0 {
		sess.DurationMinutes = models.DefaultSessionMinutes
	}
	sess.CreatedAt = now
	sess.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, store.FromMongo(err)
	}
	return sess, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Session, error) {
	var sess models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess); err != nil {
		return models.Session{}, store.FromMongo(err)
	}
	return sess, nil
}

func (s *Store) ListByBilan(ctx context.Context, bilanID int64) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"bilan_id": bilanID}, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id int64, p store.SessionPatch) (models.Session, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ScheduledAt != nil {
		set["scheduled_at"] = *p.ScheduledAt
	}
	if p.DurationMinutes != nil {
		set["duration_minutes"] = *p.DurationMinutes
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}

	var sess models.Session
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sess)
	if err != nil {
		return models.Session{}, store.FromMongo(err)
	}
	return sess, nil
}

func (s *Store) DeleteByBilan(ctx context.Context, bilanID int64) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"bilan_id": bilanID})
	return store.FromMongo(err)
}
