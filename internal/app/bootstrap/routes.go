// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/ltiusage/internal/app/features/errors"
	healthfeature "github.com/dalemusser/ltiusage/internal/app/features/health"
	launchfeature "github.com/dalemusser/ltiusage/internal/app/features/launch"
	logoutfeature "github.com/dalemusser/ltiusage/internal/app/features/logout"
	ltiusagefeature "github.com/dalemusser/ltiusage/internal/app/features/ltiusage"
	ltiusagestore "github.com/dalemusser/ltiusage/internal/app/store/ltiusage"
	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	userstore "github.com/dalemusser/ltiusage/internal/app/store/users"
	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"github.com/dalemusser/ltiusage/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Version is reported by /health. Set at build time with
// -ldflags "-X github.com/dalemusser/ltiusage/internal/app/bootstrap.Version=...".
var Version = "dev"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It boots the template engine, builds
// the session manager, and mounts the report, the launch endpoint and the
// operational endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request: role changes and disabled accounts
	// take effect immediately.
	users := userstore.NewFetcher(deps.MongoDatabase)
	sessionMgr.SetUserFetcher(users)

	tokens := auth.TokenConfig{
		Secret: appCfg.APITokenSecret,
		Issuer: appCfg.APITokenIssuer,
		TTL:    appCfg.APITokenTTL,
	}
	sessionMgr.SetTokenConfig(tokens)

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Loads SessionUser into context from the cookie or a bearer token.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, Version, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	mountMetrics(r, sessionMgr)

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, launchfeature.DefaultReturn, http.StatusSeeOther)
	})

	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	launchHandler := launchfeature.NewHandler(sessionMgr, tokens, users, errLog, logger)
	launchHandler.Limiter = ratelimit.NewLaunchLimiter(10, time.Minute)
	r.Mount("/launch", launchfeature.Routes(launchHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	activities := ltiusagestore.New(deps.MongoDatabase)
	pages := usagepages.New(activities, usagepages.Links{ViewBase: appCfg.LMSBaseURL})
	usageHandler := ltiusagefeature.NewHandler(pages, activities, errLog, logger)
	usageHandler.MaxPerPage = appCfg.PageSizeMax

	r.With(csrfProtect(appCfg.SessionKey, secure, logger)...).
		Mount("/ltiusage", ltiusagefeature.Routes(usageHandler, sessionMgr))

	return r, nil
}

// mountMetrics serves the Prometheus registry to site administrators only.
func mountMetrics(r chi.Router, sm *auth.SessionManager) {
	r.With(sm.RequireRole("superadmin", "admin")).Handle("/metrics", promhttp.Handler())
}

// csrfProtect guards the report's forms. The key is derived from the
// session key so one secret covers both cookies.
func csrfProtect(sessionKey string, secure bool, logger *zap.Logger) []func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			errorsfeature.HTMXError(w, r, http.StatusForbidden, "Your form expired. Reload the page and try again.", func() {
				errorsfeature.RenderForbidden(w, r, "Your form expired. Reload the page and try again.", "/ltiusage")
			})
		})),
	)

	if secure {
		return []func(http.Handler) http.Handler{protect}
	}
	// Plain HTTP in development: skip the HTTPS referer check.
	plaintext := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
	return []func(http.Handler) http.Handler{plaintext, protect}
}
