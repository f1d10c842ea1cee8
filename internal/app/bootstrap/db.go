// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/helal366/flexora-server/internal/app/system/auth"
	"github.com/helal366/flexora-server/internal/app/system/indexes"
	"github.com/helal366/flexora-server/internal/app/system/payments"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and constructs the external
// service clients (Firebase identity provider, Stripe payment processor).
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return DBDeps{}, fmt.Errorf("pinging MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	identity, err := auth.NewFirebaseProvider(ctx, appCfg.FirebaseServiceKey)
	if err != nil {
		return DBDeps{}, fmt.Errorf("initializing identity provider: %w", err)
	}

	processor, err := payments.NewStripeProcessor(appCfg.StripeSecretKey, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("initializing payment processor: %w", err)
	}

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Identity:      identity,
		Payments:      processor,
	}, nil
}

// EnsureSchema applies the app's index set, including the unique indexes the
// duplicate-claim and duplicate-favorite guarantees depend on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
