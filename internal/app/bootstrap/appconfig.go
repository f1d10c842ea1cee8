// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS, body limits). AppConfig is everything specific to this
// application: database connection details, external service credentials,
// and domain defaults.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Identity provider configuration
	FirebaseServiceKey string // Base64-encoded Firebase service account JSON

	// Payment processor configuration
	StripeSecretKey string // Stripe secret API key

	// Admin bootstrap
	AdminEmail string // Email promoted/created as admin on startup
}
