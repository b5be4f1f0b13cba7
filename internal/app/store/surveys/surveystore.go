// internal/app/store/surveys/surveystore.go
package surveystore

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

const (
	surveysCollection   = "satisfaction_surveys"
	responsesCollection = "survey_responses"
)

// Store manages satisfaction surveys and their responses.
type Store struct {
	surveys   *mongo.Collection
	responses *mongo.Collection
	ids       *counters.Counters
}

func New(db *mongo.Database) *Store {
	return &Store{
		surveys:   db.Collection(surveysCollection),
		responses: db.Collection(responsesCollection),
		ids:       counters.New(db),
	}
}

func (s *Store) CreateSurvey(ctx context.Context, sv models.SatisfactionSurvey) (models.SatisfactionSurvey, error) {
	id, err := s.ids.Next(ctx, surveysCollection)
	if err != nil {
		return models.SatisfactionSurvey{}, err
	}
	sv.ID = id
	sv.CreatedAt = time.Now().UTC()
	if _, err := s.surveys.InsertOne(ctx, sv); err != nil {
		return models.SatisfactionSurvey{}, store.FromMongo(err)
	}
	return sv, nil
}

func (s *Store) GetSurvey(ctx context.Context, id int64) (models.SatisfactionSurvey, error) {
	var sv models.SatisfactionSurvey
	if err := s.surveys.FindOne(ctx, bson.M{"_id": id}).Decode(&sv); err != nil {
		return models.SatisfactionSurvey{}, store.FromMongo(err)
	}
	return sv, nil
}

func (s *Store) ListSurveysByBilan(ctx context.Context, bilanID int64) ([]models.SatisfactionSurvey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.surveys.Find(ctx, bson.M{"bilan_id": bilanID}, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.SatisfactionSurvey{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) CreateResponse(ctx context.Context, r models.SurveyResponse) (models.SurveyResponse, error) {
	id, err := s.ids.Next(ctx, responsesCollection)
	if err != nil {
		return models.SurveyResponse{}, err
	}
	r.ID = id
	r.CreatedAt = time.Now().UTC()
	if _, err := s.responses.InsertOne(ctx, r); err != nil {
		return models.SurveyResponse{}, store.FromMongo(err)
	}
	return r, nil
}

func (s *Store) findResponses(ctx context.Context, filter bson.M) ([]models.SurveyResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.responses.Find(ctx, filter, opts)
	if err != nil {
		return nil, store.FromMongo(err)
	}
	defer cur.Close(ctx)

	out := []models.SurveyResponse{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.FromMongo(err)
	}
	return out, nil
}

func (s *Store) ListResponses(ctx context.Context, surveyID int64) ([]models.SurveyResponse, error) {
	return s.findResponses(ctx, bson.M{"survey_id": surveyID})
}

func (s *Store) ListResponsesByBilans(ctx context.Context, bilanIDs []int64) ([]models.SurveyResponse, error) {
	if len(bilanIDs) == 0 {
		return []models.SurveyResponse{}, nil
	}
	return s.findResponses(ctx, bson.M{"bilan_id": bson.M{"$in": bilanIDs}})
}

func (s *Store) DeleteByBilan(ctx context.Context, bilanID int64) error {
	if _, err := s.responses.DeleteMany(ctx, bson.M{"bilan_id": bilanID}); err != nil {
		return store.FromMongo(err)
	}
	_, err := s.surveys.DeleteMany(ctx, bson.M{"bilan_id": bilanID})
	return store.FromMongo(err)
}
