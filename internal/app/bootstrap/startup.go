// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/helal366/flexora-server/internal/app/store/users"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin creates or promotes the configured admin account so the
// moderation and role-decision surfaces are reachable on a fresh database.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if _, err := users.SetRole(ctx, email, models.RoleAdmin); err != nil {
			return err
		}
		logger.Info("promoted existing user to admin", zap.String("email", email))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		_, err := users.Create(ctx, models.User{
			Name:  "Admin",
			Email: email,
			Role:  models.RoleAdmin,
		})
		if err != nil && !errors.Is(err, userstore.ErrDuplicateEmail) {
			return err
		}
		logger.Info("created admin user", zap.String("email", email))
		return nil

	default:
		return err
	}
}
