// internal/app/features/launch/handler.go
package launch

import (
	"net/http"

	uierrors "github.com/dalemusser/ltiusage/internal/app/features/errors"
	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"github.com/dalemusser/ltiusage/internal/app/system/navigation"
	"github.com/dalemusser/ltiusage/internal/app/system/ratelimit"
	"github.com/dalemusser/ltiusage/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// DefaultReturn is where a launch lands when it names no destination.
const DefaultReturn = "/ltiusage"

// Handler turns a signed launch token into a browser session. The LMS
// (or ltiusagectl token) mints the token; there is no password login.
type Handler struct {
	SessionMgr *auth.SessionManager
	Tokens     auth.TokenConfig
	Users      auth.UserFetcher
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	// Limiter throttles rejected tokens per client address. Nil disables it.
	Limiter *ratelimit.LaunchLimiter
}

func NewHandler(sm *auth.SessionManager, tokens auth.TokenConfig, users auth.UserFetcher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sm,
		Tokens:     tokens,
		Users:      users,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// ServeLaunch handles GET /launch?token=<jwt>&return=<path>.
func (h *Handler) ServeLaunch(w http.ResponseWriter, r *http.Request) {
	if h.Limiter.Blocked(r) {
		h.Log.Warn("launch throttled", zap.String("ip", ratelimit.ClientIP(r)))
		if uierrors.WantsJSON(r) {
			uierrors.WriteJSONError(w, http.StatusTooManyRequests, "too many failed launches", "")
			return
		}
		http.Error(w, "Too many failed launches. Please wait a minute before trying again.", http.StatusTooManyRequests)
		return
	}

	claims, err := auth.ParseToken(query.Get(r, "token"), h.Tokens)
	if err != nil {
		h.Limiter.Failed(r)
		h.Log.Warn("launch token rejected", zap.Error(err))
		if uierrors.WantsJSON(r) {
			uierrors.WriteJSONError(w, http.StatusUnauthorized, "invalid launch token", "")
			return
		}
		uierrors.RenderUnauthorized(w, r, "/")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "launch user lookup")
	defer cancel()

	u := h.Users.FetchUser(ctx, claims.Subject)
	if u == nil {
		h.Limiter.Failed(r)
		h.ErrLog.LogForbidden(w, r, "launch for unknown or disabled user", "Your account cannot open this report.", "/")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "launch sign-in failed", err, "Unable to start your session.", "/")
		return
	}
	h.Limiter.Succeeded(r)

	h.Log.Info("launch signed in",
		zap.String("user_id", u.ID),
		zap.String("role", u.Role),
		zap.Time("token_expires", claims.ExpiresAt))

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.ReportBackURL), http.StatusSeeOther)
}
