package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"go.uber.org/zap"
)

const testUserID = "507f1f77bcf86cd799439011"

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	})
}

func TestRequireSignedIn_NoUser(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		wantHeader string
	}{
		{"html redirects", map[string]string{"Accept": "text/html"}, http.StatusSeeOther, "Location"},
		{"api returns 401", map[string]string{"Accept": "application/json"}, http.StatusUnauthorized, ""},
		{"htmx gets HX-Redirect", map[string]string{"HX-Request": "true"}, http.StatusUnauthorized, "HX-Redirect"},
	}

	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ltiusage?page_3=1", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantHeader == "" {
				return
			}
			dest := rec.Header().Get(tt.wantHeader)
			if !strings.HasPrefix(dest, "/unauthorized?return=") {
				t.Errorf("%s = %q, want /unauthorized?return=...", tt.wantHeader, dest)
			}
			if !strings.Contains(dest, "page_3") {
				t.Errorf("%s = %q, expected return URL to keep the query", tt.wantHeader, dest)
			}
		})
	}
}

func TestRequireRole_NoUser_RedirectsToUnauthorized(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("admin")(okHandler())

	req := httptest.NewRequest("GET", "/ltiusage", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/unauthorized") {
		t.Errorf("expected redirect to /unauthorized, got %q", loc)
	}
}

func TestRequireRole_WrongRole_RedirectsToForbidden(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("admin")(okHandler())

	req := withTestUser(httptest.NewRequest("GET", "/ltiusage", nil), "viewer")
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/forbidden" {
		t.Errorf("expected redirect to /forbidden, got %q", loc)
	}
}

func TestRequireRole_WrongRole_API_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("admin")(okHandler())

	req := withTestUser(httptest.NewRequest("GET", "/ltiusage/api/pagination", nil), "viewer")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_AllowedRoles(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole("superadmin", "Admin", "manager")(okHandler())

	tests := []struct {
		role string
		want int
	}{
		{"superadmin", http.StatusOK},
		{"admin", http.StatusOK},
		{"ADMIN", http.StatusOK},
		{"manager", http.StatusOK},
		{"viewer", http.StatusForbidden},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := withTestUser(httptest.NewRequest("GET", "/ltiusage", nil), tt.role)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("role %q: status = %d, want %d", tt.role, rec.Code, tt.want)
			}
		})
	}
}

func TestCurrentUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("expected no user on a bare request")
	}

	req = withTestUser(req, "admin")
	u, ok := auth.CurrentUser(req)
	if !ok {
		t.Fatal("expected user to be found")
	}
	if u.Role != "admin" || u.ID != testUserID {
		t.Errorf("unexpected user: %+v", u)
	}
}

type stubFetcher struct {
	users map[string]*auth.SessionUser
	calls int
}

func (f *stubFetcher) FetchUser(_ context.Context, id string) *auth.SessionUser {
	f.calls++
	return f.users[id]
}

func captureUser(got **auth.SessionUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.CurrentUser(r); ok {
			*got = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoadSessionUser_BearerToken(t *testing.T) {
	sm := newTestSessionManager(t)
	cfg := auth.TokenConfig{Secret: "bearer-secret", Issuer: "ltiusage", TTL: time.Hour}
	sm.SetTokenConfig(cfg)

	fetcher := &stubFetcher{users: map[string]*auth.SessionUser{
		testUserID: {ID: testUserID, Name: "Ada", LoginID: "ada", Role: "admin"},
	}}
	sm.SetUserFetcher(fetcher)

	// The token claims "viewer"; the live record wins.
	tok, err := auth.IssueToken(cfg, testUserID, "Ada", "viewer", time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	var got *auth.SessionUser
	req := httptest.NewRequest("GET", "/ltiusage/api/pagination", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	sm.LoadSessionUser(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user from bearer token")
	}
	if got.Role != "admin" {
		t.Errorf("role = %q, want live role admin", got.Role)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
}

func TestLoadSessionUser_RejectsBadToken(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetTokenConfig(auth.TokenConfig{Secret: "bearer-secret", Issuer: "ltiusage"})

	other := auth.TokenConfig{Secret: "another-secret", Issuer: "ltiusage"}
	tok, err := auth.IssueToken(other, testUserID, "Ada", "admin", time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	for _, header := range []string{"Bearer " + tok, "Basic abc", "Bearer "} {
		var got *auth.SessionUser
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		sm.LoadSessionUser(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)
		if got != nil {
			t.Errorf("header %q: expected anonymous caller, got %+v", header, got)
		}
	}
}

func TestLoadSessionUser_DisabledUserIsSignedOut(t *testing.T) {
	sm := newTestSessionManager(t)
	cfg := auth.TokenConfig{Secret: "bearer-secret", Issuer: "ltiusage"}
	sm.SetTokenConfig(cfg)
	sm.SetUserFetcher(&stubFetcher{users: map[string]*auth.SessionUser{}})

	tok, _ := auth.IssueToken(cfg, testUserID, "Ada", "admin", time.Now())

	var got *auth.SessionUser
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	sm.LoadSessionUser(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got != nil {
		t.Errorf("expected no user when fetcher returns nil, got %+v", got)
	}
}

func TestSignIn_CookieRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, httptest.NewRequest("GET", "/launch", nil), testUserID); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	var got *auth.SessionUser
	req := httptest.NewRequest("GET", "/ltiusage", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	sm.LoadSessionUser(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != testUserID {
		t.Fatalf("expected user %s from cookie, got %+v", testUserID, got)
	}
}

func TestLoadSessionUser_GarbageCookieIgnored(t *testing.T) {
	sm := newTestSessionManager(t)

	var got *auth.SessionUser
	req := httptest.NewRequest("GET", "/ltiusage", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(captureUser(&got)).ServeHTTP(rec, req)

	if got != nil {
		t.Errorf("expected anonymous caller, got %+v", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func withTestUser(r *http.Request, role string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:      testUserID,
		Name:    "Test User",
		LoginID: "test@example.com",
		Role:    role,
	})
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("GET", "/logout", nil)); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("MaxAge = %d, want negative", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected an expiring session cookie")
	}
}
