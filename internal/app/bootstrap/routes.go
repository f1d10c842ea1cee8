// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	donationsfeature "github.com/helal366/flexora-server/internal/app/features/donations"
	favoritesfeature "github.com/helal366/flexora-server/internal/app/features/favorites"
	healthfeature "github.com/helal366/flexora-server/internal/app/features/health"
	homefeature "github.com/helal366/flexora-server/internal/app/features/home"
	paymentsfeature "github.com/helal366/flexora-server/internal/app/features/payments"
	requestsfeature "github.com/helal366/flexora-server/internal/app/features/requests"
	reviewsfeature "github.com/helal366/flexora-server/internal/app/features/reviews"
	usersfeature "github.com/helal366/flexora-server/internal/app/features/users"
	"github.com/helal366/flexora-server/internal/app/lifecycle/accounts"
	"github.com/helal366/flexora-server/internal/app/lifecycle/arbitration"
	"github.com/helal366/flexora-server/internal/app/lifecycle/donationcycle"
	favoritestore "github.com/helal366/flexora-server/internal/app/store/favorites"
	reviewstore "github.com/helal366/flexora-server/internal/app/store/reviews"
	transactionstore "github.com/helal366/flexora-server/internal/app/store/transactions"
	userstore "github.com/helal366/flexora-server/internal/app/store/users"
	"github.com/helal366/flexora-server/internal/app/system/auth"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Flexora builds the lifecycle managers on
// top of the Mongo database, wires the bearer-token middleware against the
// identity provider, and mounts a JSON feature router per resource.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Lifecycle managers own the domain transitions; features stay thin.
	donationMgr := donationcycle.New(db, logger)
	arbiterMgr := arbitration.New(db, donationMgr, logger)
	accountMgr := accounts.New(db, deps.Identity, logger)

	// Roles are read from the user collection on every guarded request so
	// admin decisions take effect without re-login.
	mw := auth.NewMiddleware(deps.Identity, logger)
	roles := userstore.New(db).RoleByEmail

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Public landing banner
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Accounts, roles, and deletion
	usersHandler := usersfeature.NewHandler(accountMgr, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, mw, roles))

	// Donations and bookmarking
	donationsHandler := donationsfeature.NewHandler(donationMgr, logger)
	r.Mount("/donations", donationsfeature.Routes(donationsHandler, mw, roles))

	// Requests and arbitration
	requestsHandler := requestsfeature.NewHandler(arbiterMgr, logger)
	r.Mount("/requests", requestsfeature.Routes(requestsHandler, mw, roles))

	// Reviews
	reviewsHandler := reviewsfeature.NewHandler(reviewstore.New(db), logger)
	r.Mount("/reviews", reviewsfeature.Routes(reviewsHandler, mw))

	// Saved-donation bookmarks (read side)
	favoritesHandler := favoritesfeature.NewHandler(favoritestore.New(db), logger)
	r.Mount("/favorites", favoritesfeature.Routes(favoritesHandler, mw))

	// Payments
	paymentsHandler := paymentsfeature.NewHandler(deps.Payments, transactionstore.New(db), logger)
	r.Mount("/payments", paymentsfeature.Routes(paymentsHandler, mw))

	return r, nil
}
