// internal/app/features/ltiusage/api.go
package ltiusage

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/ltiusage/internal/app/features/errors"
	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/metrics"
	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
	"github.com/dalemusser/ltiusage/internal/app/system/paging"
	"github.com/dalemusser/ltiusage/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServePagination handles GET /ltiusage/api/pagination?typeid=&page=&perpage=.
//
// It returns one page of one group as JSON. page defaults to 0 and perpage
// to 25. The caller's delete permission is derived from the session on
// every call; nothing in the request can turn it on.
func (h *Handler) ServePagination(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("X-Service-Method", ServiceMethod)

	raw := strings.TrimSpace(query.Get(r, "typeid"))
	typeID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || typeID < 0 {
		metrics.ObservePage(metrics.PathAPI, metrics.OutcomeError, time.Since(start))
		uierrors.WriteJSONError(w, http.StatusBadRequest, "typeid must be a non-negative integer", "")
		return
	}

	req := usagepages.PageRequest{
		GroupID:  typeID,
		Page:     paging.ParseIndex(r, "page"),
		PageSize: paging.ParseSize(r, "perpage"),
	}

	if h.MaxPerPage > 0 && req.PageSize > h.MaxPerPage {
		req.PageSize = h.MaxPerPage
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "ltiusage api page")
	defer cancel()

	res, err := h.Pages.GetPage(ctx, req, callerFrom(r))
	if errors.Is(err, usagepages.ErrAccessDenied) {
		metrics.ObservePage(metrics.PathAPI, metrics.OutcomeDenied, time.Since(start))
		uierrors.WriteJSONError(w, http.StatusForbidden, "access denied", "")
		return
	}
	if err != nil {
		metrics.ObservePage(metrics.PathAPI, metrics.OutcomeError, time.Since(start))
		h.ErrLog.LogJSONServerError(w, r, "ltiusage api page failed", err, "A database error occurred.")
		return
	}

	metrics.ObservePage(metrics.PathAPI, metrics.OutcomeOK, time.Since(start))
	h.Log.Debug("ltiusage api page",
		zap.Int64("type_id", res.GroupID),
		zap.Int("page", res.Page),
		zap.Int("rows", len(res.Rows)))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(res)
}

// ServeListing handles GET /ltiusage/api/listing?page_<typeID>=N.
//
// It is the JSON form of the full report: every group on the page named by
// its page_<typeID> parameter. Clients bootstrap from it and then page one
// group at a time through ServePagination.
func (h *Handler) ServeListing(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("X-Service-Method", ListingMethod)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "ltiusage api listing")
	defer cancel()

	groups, err := h.Pages.Listing(ctx, callerFrom(r), pagelink.PagesFromQuery(r.URL.Query()))
	if errors.Is(err, usagepages.ErrAccessDenied) {
		metrics.ObservePage(metrics.PathAPI, metrics.OutcomeDenied, time.Since(start))
		uierrors.WriteJSONError(w, http.StatusForbidden, "access denied", "")
		return
	}
	if err != nil {
		metrics.ObservePage(metrics.PathAPI, metrics.OutcomeError, time.Since(start))
		h.ErrLog.LogJSONServerError(w, r, "ltiusage api listing failed", err, "A database error occurred.")
		return
	}

	metrics.ObservePage(metrics.PathAPI, metrics.OutcomeOK, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(listingResponse{Groups: groups})
}

type listingResponse struct {
	Groups []usagepages.PageResult `json:"groups"`
}
