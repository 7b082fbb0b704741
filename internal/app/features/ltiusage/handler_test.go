package ltiusage_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/ltiusage/internal/app/features/errors"
	"github.com/dalemusser/ltiusage/internal/app/features/ltiusage"
	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, src *testutil.MemorySource) *ltiusage.Handler {
	t.Helper()
	logger := zap.NewNop()
	svc := usagepages.New(src, usagepages.Links{ViewBase: "https://lms.example.com"})
	return ltiusage.NewHandler(svc, src, uierrors.NewErrorLogger(logger), logger)
}

func seededSource() *testutil.MemorySource {
	acts := append(testutil.Activities(7, 1, 30), testutil.Activities(0, 500, 2)...)
	return testutil.NewMemorySource(acts, map[int64]string{7: "Video Tool"})
}

// render runs fn, tolerating template panics when no engine is booted.
func render(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			// Template rendering may panic in tests
		}
	}()
	fn()
}

func TestNewHandler(t *testing.T) {
	if h := newTestHandler(t, seededSource()); h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func apiRequest(target string, user testutil.TestUser) *http.Request {
	req := testutil.NewAuthenticatedRequest("GET", target, user)
	req.Header.Set("Accept", "application/json")
	return req
}

func TestServePagination_OK(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.ServePagination(rec, apiRequest("/ltiusage/api/pagination?typeid=7&page=1", testutil.ManagerUser()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Service-Method"); got != ltiusage.ServiceMethod {
		t.Errorf("X-Service-Method = %q", got)
	}

	var res usagepages.PageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.GroupID != 7 || res.GroupName != "Video Tool" || res.Page != 1 || res.CurrentPage != 2 {
		t.Errorf("unexpected page: %+v", res)
	}
	if len(res.Rows) != 5 || res.HasNext || !res.HasPrev || res.PageSize != 25 {
		t.Errorf("rows=%d hasNext=%v hasPrev=%v pageSize=%d", len(res.Rows), res.HasNext, res.HasPrev, res.PageSize)
	}
	if res.CanDelete {
		t.Error("manager must not get candelete")
	}
}

func TestServePagination_JSONFieldNames(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.ServePagination(rec, apiRequest("/ltiusage/api/pagination?typeid=0", testutil.AdminUser()))

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"groupId", "groupName", "rows", "total", "page", "pageSize", "candelete",
		"hasPrev", "hasNext", "prev", "next", "totalPages", "currentPage"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response lacks %q", key)
		}
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw["rows"], &rows); err != nil || len(rows) == 0 {
		t.Fatalf("rows: %v (%d)", err, len(rows))
	}
	for _, key := range []string{"course", "name", "visible", "link", "deletelink", "showDelete", "activityRef"} {
		if _, ok := rows[0][key]; !ok {
			t.Errorf("row lacks %q", key)
		}
	}
	if string(raw["candelete"]) != "true" {
		t.Errorf("admin candelete = %s", raw["candelete"])
	}
}

func TestServePagination_ClientCannotForceDelete(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.ServePagination(rec, apiRequest("/ltiusage/api/pagination?typeid=7&candelete=1&showDelete=true", testutil.ManagerUser()))

	var res usagepages.PageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, r := range res.Rows {
		if r.ShowDelete || r.DeleteLink != "" {
			t.Fatalf("row %d exposes delete to a manager", r.ActivityRef)
		}
	}
}

func TestServePagination_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		user   testutil.TestUser
		srcErr error
		want   int
	}{
		{"missing typeid", "/ltiusage/api/pagination", testutil.AdminUser(), nil, http.StatusBadRequest},
		{"negative typeid", "/ltiusage/api/pagination?typeid=-1", testutil.AdminUser(), nil, http.StatusBadRequest},
		{"viewer denied", "/ltiusage/api/pagination?typeid=7", testutil.ViewerUser(), nil, http.StatusForbidden},
		{"store failure", "/ltiusage/api/pagination?typeid=7", testutil.AdminUser(), errors.New("mongo down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := seededSource()
			src.Err = tt.srcErr
			h := newTestHandler(t, src)
			rec := httptest.NewRecorder()

			h.ServePagination(rec, apiRequest(tt.target, tt.user))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("expected JSON error body, got %q", rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "mongo down") {
				t.Error("store error leaked to the caller")
			}
		})
	}
}

func TestServePagination_OutOfRangeClamps(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.ServePagination(rec, apiRequest("/ltiusage/api/pagination?typeid=7&page=40", testutil.AdminUser()))

	var res usagepages.PageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Page != 1 || len(res.Rows) != 5 {
		t.Errorf("page=%d rows=%d, want clamped to last page", res.Page, len(res.Rows))
	}
}

func TestServeGroup_NonHTMXRedirects(t *testing.T) {
	h := newTestHandler(t, seededSource())

	req := testutil.NewAuthenticatedRequest("GET", "/ltiusage/groups/7?page_7=1", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "typeID", "7")
	rec := testutil.NewRecorder()

	h.ServeGroup(rec, req)

	rec.AssertRedirect(t, "/ltiusage?page_7=1")
}

func TestServeGroup_HTMX(t *testing.T) {
	h := newTestHandler(t, seededSource())

	req := testutil.NewAuthenticatedRequest("GET", "/ltiusage/groups/7?page_7=1", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "typeID", "7")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://example.com/ltiusage?page_0=0")
	rec := httptest.NewRecorder()

	render(func() { h.ServeGroup(rec, req) })

	push := rec.Header().Get("HX-Push-Url")
	if push != "" {
		u, err := url.Parse(push)
		if err != nil || u.Path != "/ltiusage" || u.Query().Get("page_7") != "1" || u.Query().Get("page_0") != "0" {
			t.Errorf("HX-Push-Url = %q", push)
		}
	}
}

func TestServeGroup_HTMXDenied(t *testing.T) {
	h := newTestHandler(t, seededSource())

	req := testutil.NewAuthenticatedRequest("GET", "/ltiusage/groups/7", testutil.ViewerUser())
	req = testutil.WithChiURLParam(req, "typeID", "7")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	h.ServeGroup(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("denied fragment must not replace the table")
	}
}

func TestServeGroup_HTMXStoreFailureKeepsTable(t *testing.T) {
	src := seededSource()
	src.Err = errors.New("timeout")
	h := newTestHandler(t, src)

	req := testutil.NewAuthenticatedRequest("GET", "/ltiusage/groups/7?page_7=1", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "typeID", "7")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	h.ServeGroup(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("failed fragment must not replace the table")
	}
}

func TestServeList_Renders(t *testing.T) {
	h := newTestHandler(t, seededSource())

	req := testutil.NewAuthenticatedRequest("GET", "/ltiusage?page_7=1", testutil.AdminUser())
	rec := httptest.NewRecorder()

	// Handler will try to render a template which may panic without initialized templates
	render(func() { h.ServeList(rec, req) })
}

func deleteRequest(cmid string, htmx bool) *http.Request {
	form := url.Values{"return": {"/ltiusage?page_7=1"}}
	req := httptest.NewRequest("POST", "/ltiusage/activities/"+cmid+"/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	req = testutil.WithUser(req, testutil.AdminUser())
	return testutil.WithChiURLParam(req, "cmid", cmid)
}

func TestHandleDelete(t *testing.T) {
	src := seededSource()
	h := newTestHandler(t, src)
	before := src.Len()

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, deleteRequest("3", false))
	rec.AssertRedirect(t, "/ltiusage?page_7=1")
	if src.Len() != before-1 {
		t.Errorf("expected one activity removed, have %d of %d", src.Len(), before)
	}

	hx := httptest.NewRecorder()
	h.HandleDelete(hx, deleteRequest("4", true))
	if hx.Code != http.StatusNoContent {
		t.Errorf("HTMX status = %d, want 204", hx.Code)
	}
	if got := hx.Header().Get("HX-Redirect"); got != "/ltiusage?page_7=1" {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestHandleDelete_NotFound(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.HandleDelete(rec, deleteRequest("99999", true))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDelete_BadID(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	req := deleteRequest("abc", false)
	req.Header.Set("Accept", "application/json")
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServePagination_PerPageCap(t *testing.T) {
	h := newTestHandler(t, seededSource())
	h.MaxPerPage = 10
	rec := httptest.NewRecorder()

	h.ServePagination(rec, apiRequest("/ltiusage/api/pagination?typeid=7&perpage=50", testutil.AdminUser()))

	var res usagepages.PageResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.PageSize != 10 || len(res.Rows) != 10 || res.TotalPages != 3 {
		t.Errorf("pageSize=%d rows=%d totalPages=%d", res.PageSize, len(res.Rows), res.TotalPages)
	}
}

func TestServeListing(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.ServeListing(rec, apiRequest("/ltiusage/api/listing?page_7=1", testutil.ManagerUser()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Service-Method"); got != ltiusage.ListingMethod {
		t.Errorf("X-Service-Method = %q, want %q", got, ltiusage.ListingMethod)
	}
	var body struct {
		Groups []usagepages.PageResult `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(body.Groups))
	}
	manual, video := body.Groups[0], body.Groups[1]
	if manual.GroupID != 0 || manual.GroupName != usagepages.ManualGroupName || manual.Total != 2 {
		t.Errorf("manual group = %+v", manual)
	}
	if video.GroupID != 7 || video.Page != 1 || len(video.Rows) != 5 {
		t.Errorf("video group page=%d rows=%d", video.Page, len(video.Rows))
	}
}

func TestServeListing_Denied(t *testing.T) {
	h := newTestHandler(t, seededSource())
	rec := httptest.NewRecorder()

	h.ServeListing(rec, apiRequest("/ltiusage/api/listing", testutil.ViewerUser()))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
