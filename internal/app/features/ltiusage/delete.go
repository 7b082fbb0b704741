// internal/app/features/ltiusage/delete.go
package ltiusage

import (
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/ltiusage/internal/app/features/errors"
	ltiusagestore "github.com/dalemusser/ltiusage/internal/app/store/ltiusage"
	"github.com/dalemusser/ltiusage/internal/app/system/metrics"
	"github.com/dalemusser/ltiusage/internal/app/system/navigation"
	"github.com/dalemusser/ltiusage/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleDelete handles POST /ltiusage/activities/{cmid}/delete.
// Site admins only (enforced by the route).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cmid, err := strconv.ParseInt(chi.URLParam(r, "cmid"), 10, 64)
	if err != nil || cmid <= 0 {
		metrics.ObserveDelete(metrics.OutcomeError)
		h.ErrLog.LogBadRequest(w, r, "bad activity id", err, "Invalid activity id.", listPath)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "ltiusage delete")
	defer cancel()

	if err := h.Activities.Delete(ctx, cmid); err != nil {
		if errors.Is(err, ltiusagestore.ErrNotFound) {
			metrics.ObserveDelete(metrics.OutcomeError)
			uierrors.HTMXError(w, r, http.StatusNotFound, "Activity not found.", func() {
				uierrors.RenderNotFound(w, r, "Activity not found.", listPath)
			})
			return
		}
		metrics.ObserveDelete(metrics.OutcomeError)
		h.ErrLog.LogServerError(w, r, "delete lti activity failed", err, "Unable to delete activity.", listPath)
		return
	}

	metrics.ObserveDelete(metrics.OutcomeOK)
	h.Log.Info("lti activity deleted", zap.Int64("cmid", cmid))

	ret := navigation.SafeBackURL(r, navigation.ReportBackURL)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", ret)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}
