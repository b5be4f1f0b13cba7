// internal/app/store/audit/store.go
package audit

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

const collection = "audit_logs"

// DefaultLimit caps Find when the filter does not set a limit.
const DefaultLimit = 100

// Store provides access to the audit_logs collection.
type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

// New creates a new audit store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

// Log records an audit event, assigning its id and timestamp when unset.
func (s *Store) Log(ctx context.Context, e models.AuditLog) error {
	if e.ID == 0 {
		id, err := s.ids.Next(ctx, collection)
		if err != nil {
			return err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return store.FromMongo(err)
}

// Find returns matching events newest first.
func (s *Store) Find(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	query := bson.M{}
	if f.OrganizationID != nil {
		query["organization_id"] = *f.OrganizationID
	}
	if f.UserID != nil {
		query["user_id"] = *f.UserID
	}
	if f.EntityType != "" {
		query["entity_type"] = f.EntityType
	}
	if f.EntityID != nil {
		query["entity_id"] = *f.EntityID
	}
	if f.Category != "" {
		query["category"] = f.Category
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	events := []models.AuditLog{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, store.FromMongo(err)
	}
	return events, nil
}
