// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the LTI usage report.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LTIUSAGE_MONGO_URI, LTIUSAGE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ltiusage", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "ltiusage-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "8h", Desc: "Session cookie lifetime (e.g., 8h, 30m)"},

	// Bearer tokens
	{Name: "api_token_secret", Default: "dev-only-token-secret-change-me", Desc: "HMAC secret for launch and API bearer tokens"},
	{Name: "api_token_issuer", Default: "ltiusage", Desc: "Issuer claim required on bearer tokens"},
	{Name: "api_token_ttl", Default: "1h", Desc: "Lifetime of tokens minted by ltiusagectl"},

	// Links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of this service"},
	{Name: "lms_base_url", Default: "", Desc: "LMS base URL used for activity links (blank renders site-relative links)"},

	{Name: "page_size_max", Default: paging.MaxPageSize, Desc: "Largest perpage accepted by the JSON service"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// LTIUSAGE_* environment variables and command-line flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LTIUSAGE", appConfigKeys)
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
		SessionMaxAge:    appValues.Duration("session_max_age", 8*time.Hour),

		APITokenSecret: appValues.String("api_token_secret"),
		APITokenIssuer: appValues.String("api_token_issuer"),
		APITokenTTL:    appValues.Duration("api_token_ttl", time.Hour),

		BaseURL:    strings.TrimRight(appValues.String("base_url"), "/"),
		LMSBaseURL: strings.TrimRight(appValues.String("lms_base_url"), "/"),

		PageSizeMax: appValues.Int("page_size_max"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before any connection attempt, and production
// refuses the development secrets.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.PageSizeMax < paging.PageSize || appCfg.PageSizeMax > paging.MaxPageSize {
		return fmt.Errorf("page_size_max must be between %d and %d, got %d", paging.PageSize, paging.MaxPageSize, appCfg.PageSizeMax)
	}
	if appCfg.APITokenSecret == "" {
		return fmt.Errorf("api_token_secret is required")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if strings.HasPrefix(appCfg.SessionKey, "dev-only") {
			return fmt.Errorf("session_key must be set in production")
		}
		if strings.HasPrefix(appCfg.APITokenSecret, "dev-only") {
			return fmt.Errorf("api_token_secret must be set in production")
		}
	}

	return nil
}
