// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	auditstore "github.com/dalemusser/bilanhub/internal/app/store/audit"
	bilanstore "github.com/dalemusser/bilanhub/internal/app/store/bilans"
	documentstore "github.com/dalemusser/bilanhub/internal/app/store/documents"
	messagestore "github.com/dalemusser/bilanhub/internal/app/store/messages"
	organizationstore "github.com/dalemusser/bilanhub/internal/app/store/organizations"
	recommendationstore "github.com/dalemusser/bilanhub/internal/app/store/recommendations"
	sessionstore "github.com/dalemusser/bilanhub/internal/app/store/sessions"
	skillstore "github.com/dalemusser/bilanhub/internal/app/store/skills"
	surveystore "github.com/dalemusser/bilanhub/internal/app/store/surveys"
	userstore "github.com/dalemusser/bilanhub/internal/app/store/users"
	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/indexes"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client, verifies it with a ping and builds the
// store set on the configured database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("bilanhub").
		SetServerSelectionTimeout(10 * time.Second)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping()*5)
	defer cancel()
	if err := client.Ping(pctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{MongoClient: client, MongoDatabase: db, Stores: mongoStores(db)}, nil
}

func mongoStores(db *mongo.Database) store.Set {
	return store.Set{
		Users:           userstore.New(db),
		Organizations:   organizationstore.New(db),
		Bilans:          bilanstore.New(db),
		Sessions:        sessionstore.New(db),
		Documents:       documentstore.New(db),
		Messages:        messagestore.New(db),
		Recommendations: recommendationstore.New(db),
		Skills:          skillstore.New(db),
		Surveys:         surveystore.New(db),
		Audit:           auditstore.New(db),
	}
}

// EnsureSchema creates the collection indexes. It is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
