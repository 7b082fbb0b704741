// internal/app/features/ltiusage/list.go
package ltiusage

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/ltiusage/internal/app/features/errors"
	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/authz"
	"github.com/dalemusser/ltiusage/internal/app/system/labels"
	"github.com/dalemusser/ltiusage/internal/app/system/metrics"
	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
	"github.com/dalemusser/ltiusage/internal/app/system/paging"
	"github.com/dalemusser/ltiusage/internal/app/system/timeouts"
	"github.com/dalemusser/ltiusage/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// callerFrom builds the page-service caller from the live session user.
func callerFrom(r *http.Request) usagepages.Caller {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return usagepages.Caller{}
	}
	return usagepages.Caller{UserID: userID.Hex(), Role: role}
}

// ServeList handles GET /ltiusage: every tool type with its own table,
// each on the page named by its page_<typeID> parameter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "ltiusage list")
	defer cancel()

	q := r.URL.Query()
	groups, err := h.Pages.Listing(ctx, callerFrom(r), pagelink.PagesFromQuery(q))
	if errors.Is(err, usagepages.ErrAccessDenied) {
		metrics.ObservePage(metrics.PathFull, metrics.OutcomeDenied, time.Since(start))
		uierrors.RenderForbidden(w, r, "You don't have permission to view the LTI usage report.", "/")
		return
	}
	if err != nil {
		metrics.ObservePage(metrics.PathFull, metrics.OutcomeError, time.Since(start))
		h.ErrLog.LogServerError(w, r, "ltiusage listing failed", err, "A database error occurred.", "/")
		return
	}

	token := csrf.Token(r)
	data := listData{
		BaseVM: viewdata.NewBaseVM(r, labels.English.Heading, "/"),
		S:      labels.English,
		Groups: make([]groupVM, 0, len(groups)),
	}
	for _, g := range groups {
		data.Groups = append(data.Groups, buildGroupVM(g, q, token, labels.English))
	}

	metrics.ObservePage(metrics.PathFull, metrics.OutcomeOK, time.Since(start))
	h.Log.Debug("ltiusage list rendered", zap.Int("groups", len(groups)))
	templates.RenderAutoMap(w, r, "ltiusage_list", nil, data)
}

// ServeGroup handles GET /ltiusage/groups/{typeID}?page_<typeID>=N.
// HTMX callers get the group's table and pager; anyone else is sent to
// the full report on the same page.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	typeID, err := strconv.ParseInt(chi.URLParam(r, "typeID"), 10, 64)
	if err != nil || typeID < 0 {
		metrics.ObservePage(metrics.PathFragment, metrics.OutcomeError, time.Since(start))
		uierrors.HTMXBadRequest(w, r, "Invalid tool type.", listPath)
		return
	}

	q := r.URL.Query()
	page := pagelink.FromQuery(q, typeID)

	if r.Header.Get("HX-Request") != "true" {
		http.Redirect(w, r, pagelink.Encode(listPath, typeID, page), http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "ltiusage group")
	defer cancel()

	req := usagepages.PageRequest{GroupID: typeID, Page: page, PageSize: paging.PageSize}
	res, err := h.Pages.GetPage(ctx, req, callerFrom(r))
	if errors.Is(err, usagepages.ErrAccessDenied) {
		metrics.ObservePage(metrics.PathFragment, metrics.OutcomeDenied, time.Since(start))
		uierrors.HTMXError(w, r, http.StatusForbidden, "You don't have permission to view the LTI usage report.", nil)
		return
	}
	if err != nil {
		metrics.ObservePage(metrics.PathFragment, metrics.OutcomeError, time.Since(start))
		h.ErrLog.HTMXLogServerError(w, r, "ltiusage group page failed", err, labels.English.LoadFailed, listPath)
		return
	}

	// Links inside the fragment are rebuilt against the page the user is
	// on, which HTMX reports in HX-Current-URL.
	vm := buildGroupVM(res, currentListQuery(r), csrf.Token(r), labels.English)
	w.Header().Set("HX-Push-Url", vm.ReturnURL)
	metrics.ObservePage(metrics.PathFragment, metrics.OutcomeOK, time.Since(start))
	templates.RenderSnippet(w, "ltiusage_group", vm)
}

// currentListQuery returns the query of the report page an HTMX request
// came from, or an empty query when it is not known.
func currentListQuery(r *http.Request) url.Values {
	u, err := url.Parse(r.Header.Get("HX-Current-URL"))
	if err != nil || u.Path != listPath {
		return url.Values{}
	}
	return u.Query()
}
