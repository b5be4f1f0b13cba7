// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything specific to BilanHub: the database, the
// session cookie, identity tokens, object storage, the AI provider, the
// job search API, PDF licensing, audit destinations and rate limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: bilanhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Identity tokens (HS256) issued by the external sign-in provider
	JWTSecret string
	JWTIssuer string

	// File storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string // Directory for the local backend
	StorageLocalURL  string // URL prefix the local files are served under

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageS3Endpoint  string // S3-compatible endpoint (MinIO, Scaleway)
	StorageS3PublicURL string // Public base URL; presigned URLs when empty

	// Generative AI configuration
	AIProvider  string // "openai" (any OpenAI-compatible endpoint) or "ollama"
	AIBaseURL   string
	AIAPIKey    string
	AIModel     string
	OllamaURL   string
	OllamaModel string

	// France Travail partner API; the embedded catalog is used when unset
	FranceTravailClientID     string
	FranceTravailClientSecret string

	// PDF rendering
	PDFLicenseKey string

	// Audit logging destinations: all, db, log or off
	AuditLogAuth     string
	AuditLogAdmin    string
	AuditLogWorkflow string

	// Deadlines for store and collaborator calls; zero keeps the default
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Rate limits
	AIRateLimitPerMinute     int
	AIRateLimitBurst         int
	PublicRateLimitPerMinute int
	PublicRateLimitBurst     int
}
