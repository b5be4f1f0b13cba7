// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/system/auditlog"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for BilanHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: BILANHUB_MONGO_URI, BILANHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "bilanhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "bilanhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Identity tokens
	{Name: "jwt_secret", Default: "", Desc: "HS256 secret of identity tokens; login is disabled when empty"},
	{Name: "jwt_issuer", Default: "", Desc: "Required iss claim of identity tokens (blank accepts any)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for documents and reports"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "eu-west-3", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "bilanhub/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint URL (blank for AWS)"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL of the bucket (blank uses presigned URLs)"},

	// Generative AI
	{Name: "ai_provider", Default: "openai", Desc: "AI provider: 'openai' (OpenAI-compatible, incl. Gemini) or 'ollama'"},
	{Name: "ai_base_url", Default: "", Desc: "OpenAI-compatible base URL (blank for api.openai.com)"},
	{Name: "ai_api_key", Default: "", Desc: "API key for the OpenAI-compatible provider"},
	{Name: "ai_model", Default: "gpt-4o-mini", Desc: "Model name for the OpenAI-compatible provider"},
	{Name: "ollama_url", Default: "http://localhost:11434", Desc: "Ollama server URL"},
	{Name: "ollama_model", Default: "llama3.1", Desc: "Ollama model name"},

	// Job search
	{Name: "francetravail_client_id", Default: "", Desc: "France Travail partner client id (blank uses the embedded catalog)"},
	{Name: "francetravail_client_secret", Default: "", Desc: "France Travail partner client secret"},

	// PDF
	{Name: "pdf_license_key", Default: "", Desc: "unidoc metered license key"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_workflow", Default: "all", Desc: "Workflow event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline of single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline of list queries"},
	{Name: "timeout_long", Default: "60s", Desc: "Deadline of AI generation, report rendering and cascades"},

	// Rate limits
	{Name: "ai_rate_limit_per_minute", Default: 10, Desc: "AI generations allowed per user per minute"},
	{Name: "ai_rate_limit_burst", Default: 3, Desc: "AI generation burst per user"},
	{Name: "public_rate_limit_per_minute", Default: 60, Desc: "Public requests (login, job search) per client IP per minute"},
	{Name: "public_rate_limit_burst", Default: 20, Desc: "Public request burst per client IP"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, BILANHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BILANHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		StorageType:        appValues.String("storage_type"),
		StorageLocalPath:   appValues.String("storage_local_path"),
		StorageLocalURL:    appValues.String("storage_local_url"),
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		AIProvider:  appValues.String("ai_provider"),
		AIBaseURL:   appValues.String("ai_base_url"),
		AIAPIKey:    appValues.String("ai_api_key"),
		AIModel:     appValues.String("ai_model"),
		OllamaURL:   appValues.String("ollama_url"),
		OllamaModel: appValues.String("ollama_model"),

		FranceTravailClientID:     appValues.String("francetravail_client_id"),
		FranceTravailClientSecret: appValues.String("francetravail_client_secret"),

		PDFLicenseKey: appValues.String("pdf_license_key"),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogAdmin:    appValues.String("audit_log_admin"),
		AuditLogWorkflow: appValues.String("audit_log_workflow"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),

		AIRateLimitPerMinute:     appValues.Int("ai_rate_limit_per_minute"),
		AIRateLimitBurst:         appValues.Int("ai_rate_limit_burst"),
		PublicRateLimitPerMinute: appValues.Int("public_rate_limit_per_minute"),
		PublicRateLimitBurst:     appValues.Int("public_rate_limit_burst"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// It checks the MongoDB URI, the storage backend, the AI provider and the
// audit destinations before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_type=local requires storage_local_path")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_type=s3 requires storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local or s3)", appCfg.StorageType)
	}

	switch appCfg.AIProvider {
	case "openai":
		if appCfg.AIModel == "" {
			return fmt.Errorf("ai_provider=openai requires ai_model")
		}
		if appCfg.AIBaseURL != "" {
			if _, err := url.ParseRequestURI(appCfg.AIBaseURL); err != nil {
				return fmt.Errorf("invalid ai_base_url: %w", err)
			}
		}
	case "ollama":
		if _, err := url.ParseRequestURI(appCfg.OllamaURL); err != nil {
			return fmt.Errorf("invalid ollama_url: %w", err)
		}
	default:
		return fmt.Errorf("unknown ai_provider %q (want openai or ollama)", appCfg.AIProvider)
	}

	for name, v := range map[string]string{
		"audit_log_auth":     appCfg.AuditLogAuth,
		"audit_log_admin":    appCfg.AuditLogAdmin,
		"audit_log_workflow": appCfg.AuditLogWorkflow,
	} {
		if !auditlog.ValidDest(v) {
			return fmt.Errorf("invalid %s %q (want all, db, log or off)", name, v)
		}
	}

	if appCfg.TimeoutShort < 0 || appCfg.TimeoutMedium < 0 || appCfg.TimeoutLong < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	if appCfg.JWTSecret == "" {
		logger.Warn("jwt_secret is empty; /auth/login and bearer tokens are disabled")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}
	return nil
}
