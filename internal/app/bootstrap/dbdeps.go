// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/bilanhub/internal/app/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Stores is the Mongo-backed store set built in ConnectDB.
	Stores store.Set
}
