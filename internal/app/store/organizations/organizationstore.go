// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"regexp"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/store/counters"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "organizations"

type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

// Create inserts a new organization. A duplicate SIRET yields store.ErrDuplicate.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.Organization{}, err
	}
	now := time.Now().UTC()
	org.ID = id
	org.NameCI = text.Fold(org.Name)
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		return models.Organization{}, store.FromMongo(err)
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return models.Organization{}, store.FromMongo(err)
	}
	return org, nil
}

// Find returns organizations sorted by folded name.
func (s *Store) Find(ctx context.Context, f store.OrganizationFilter) ([]models.Organization, error) {
	filter := bson.M{}
	if f.ID != nil {
		filter["_id"] = *f.ID
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	if f.Search != "" {
		filter["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(f.Search))}
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	orgs := []models.Organization{}
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, store.FromMongo(err)
	}
	return orgs, nil
}

// Update applies the non-nil patch fields, refreshes UpdatedAt, and returns
// the stored organization.
func (s *Store) Update(ctx context.Context, id int64, p store.OrganizationPatch) (models.Organization, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
		set["name_ci"] = text.Fold(*p.Name)
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Website != nil {
		set["website"] = *p.Website
	}
	if p.LogoURL != nil {
		set["logo_url"] = *p.LogoURL
	}
	if p.Settings != nil {
		set["settings"] = *p.Settings
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}

	var org models.Organization
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&org)
	if err != nil {
		return models.Organization{}, store.FromMongo(err)
	}
	return org, nil
}
