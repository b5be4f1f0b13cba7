// internal/app/store/documents/documentstore.go
package documentstore

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

const collection = "documents"

// Store keeps document metadata. File content lives in object storage.
type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

func (s *Store) Create(ctx context.Context, d models.Document) (models.Document, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Document{}, err
	}
	d.ID = id
	d.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Document{}, store.FromMongo(err)
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Document, error) {
	var d models.Document
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.Document{}, store.FromMongo(err)
	}
	return d, nil
}

func (s *Store) ListByBilan(ctx context.Context, bilanID int64) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"bilan_id": bilanID}, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.Document{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) Rename(ctx context.Context, id int64, fileName string) (models.Document, error) {
	var d models.Document
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"file_name": fileName}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		return models.Document{}, store.FromMongo(err)
	}
	return d, nil
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
