// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/payments"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and external-service dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Identity verifies bearer tokens and deletes provider accounts.
	Identity auth.Provider

	// Payments creates processor payment intents.
	Payments payments.Processor
}
