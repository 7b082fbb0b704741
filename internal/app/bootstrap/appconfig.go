// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework settings (ports, TLS, logging, CORS); everything specific to
// the LTI usage report lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database holding lti_activities, lti_types and users
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: ltiusage-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens for launches, the API and ltiusagectl
	APITokenSecret string
	APITokenIssuer string
	APITokenTTL    time.Duration

	// Links
	BaseURL    string // Where this service is reachable (used in launch URLs)
	LMSBaseURL string // Prefix for activity links: <lms>/mod/lti/view.php?id=N

	// Largest perpage the JSON service honours
	PageSizeMax int
}
