// internal/app/store/recommendations/recommendationstore.go
package recommendationstore

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

const collection = "recommendations"

type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

func (s *Store) Create(ctx context.Context, r models.Recommendation) (models.Recommendation, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Recommendation{}, err
	}
	r.ID = id
	if r.Priority == 0 {
		r.Priority = models.PriorityLow
	}
	r.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Recommendation{}, store.FromMongo(err)
	}
	return r, nil
}

func (s *Store) ListByBilan(ctx context.Context, bilanID int64) ([]models.Recommendation, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, bson.M{"bilan_id": bilanID}, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.Recommendation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) DeleteByBilan(ctx context.Context, bilanID int64) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"bilan_id": bilanID})
	return store.FromMongo(err)
}
