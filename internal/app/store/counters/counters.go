// internal/app/store/counters/counters.go
package counters

import (
	"context"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counters hands out monotonically increasing int64 ids, one sequence per
// collection, backed by the "counters" collection.
type Counters struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Counters {
	return &Counters{c: db.Collection("counters")}
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Next atomically increments the named sequence and returns the new value.
// The first call for a name returns 1.
func (c *Counters) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc counterDoc
	err := c.c.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, store.FromMongo(err)
	}
	return doc.Seq, nil
}
