// internal/app/store/messages/messagestore.go
package messagestore

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

const collection = "messages"

type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

func (s *Store) Create(ctx context.Context, m models.Message) (models.Message, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Message{}, err
	}
	m.ID = id
	m.IsRead = false
	m.ReadAt = nil
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, store.FromMongo(err)
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Message, error) {
	var m models.Message
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return models.Message{}, store.FromMongo(err)
	}
	return m, nil
}

func (s *Store) ListByBilan(ctx context.Context, bilanID int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"bilan_id": bilanID}, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, id int64, at time.Time) (models.Message, error) {
	var m models.Message
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at.UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return models.Message{}, store.FromMongo(err)
	}
	return m, nil
}

func (s *Store) MarkBilanRead(ctx context.Context, bilanID, receiverID int64, at time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"bilan_id": bilanID, "receiver_id": receiverID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at.UTC()}},
	)
	if err != nil {
		return 0, store.FromMongo(err)
	}
	return res.ModifiedCount, nil
}

func (s *Store) CountUnread(ctx context.Context, receiverID int64, bilanID *int64) (int64, error) {
	filter := bson.M{"receiver_id": receiverID, "is_read": false}
	if bilanID != nil {
		filter["bilan_id"] = *bilanID
	}
	n, err := s.c.CountDocuments(ctx, filter)
	return n, store.FromMongo(err)
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
