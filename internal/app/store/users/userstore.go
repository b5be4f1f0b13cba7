// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/store/counters"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "users"

type Store struct {
	c   *mongo.Collection
	ids *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection), ids: counters.New(db)}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Create inserts a new user. Role defaults to BENEFICIARY and new users are active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	id, err := s.ids.Next(ctx, collection)
	if err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	u.ID = id
	u.Name = strings.TrimSpace(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = models.RoleBeneficiary
	}
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, store.FromMongo(err)
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, store.FromMongo(err)
	}
	return u, nil
}

func (s *Store) GetByOpenID(ctx context.Context, openID string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"open_id": openID}).Decode(&u); err != nil {
		return models.User{}, store.FromMongo(err)
	}
	return u, nil
}

// UpsertByOpenID refreshes the profile of a returning user or creates a new one.
func (s *Store) UpsertByOpenID(ctx context.Context, u models.User) (models.User, error) {
	existing, err := s.GetByOpenID(ctx, u.OpenID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		now := time.Now().UTC()
		u.LastSignedIn = &now
		return s.Create(ctx, u)
	case err != nil:
		return models.User{}, err
	}

	now := time.Now().UTC()
	p := store.UserPatch{LastSignedIn: &now}
	if u.Name != "" {
		p.Name = &u.Name
	}
	if u.Email != "" {
		p.Email = &u.Email
	}
	if u.AvatarURL != "" {
		p.AvatarURL = &u.AvatarURL
	}
	return s.Update(ctx, existing.ID, p)
}

func userFilter(f store.UserFilter) bson.M {
	filter := bson.M{}
	if f.OrganizationID != nil {
		filter["organization_id"] = *f.OrganizationID
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.ActiveOnly {
		filter["is_active"] = true
		filter["deleted_at"] = bson.M{"$exists": false}
	}
	if f.Search != "" {
		q := regexp.QuoteMeta(text.Fold(f.Search))
		filter["$or"] = bson.A{
			bson.M{"name_ci": bson.M{"$regex": q}},
			bson.M{"email": bson.M{"$regex": regexp.QuoteMeta(normalizeEmail(f.Search))}},
		}
	}
	return filter
}

// Find returns users sorted by folded name.
func (s *Store) Find(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	cur, err := s.c.Find(ctx, userFilter(f), options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, store.FromMongo(err)
	}
	return users, nil
}

func (s *Store) Count(ctx context.Context, f store.UserFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, userFilter(f))
	return n, store.FromMongo(err)
}

// Update applies the non-nil patch fields and returns the stored user.
func (s *Store) Update(ctx context.Context, id int64, p store.UserPatch) (models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if p.Email != nil {
		set["email"] = normalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.AvatarURL != nil {
		set["avatar_url"] = *p.AvatarURL
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}
	if p.OrganizationID != nil {
		set["organization_id"] = *p.OrganizationID
	}
	if p.IsActive != nil {
		set["is_active"] = *p.IsActive
	}
	if p.DeletedAt != nil {
		set["deleted_at"] = *p.DeletedAt
	}
	if p.LastSignedIn != nil {
		set["last_signed_in"] = *p.LastSignedIn
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return models.User{}, store.FromMongo(err)
	}
	return u, nil
}
