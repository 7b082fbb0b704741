package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"github.com/dalemusser/ltiusage/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func requestAs(role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Role: role})
}

func TestCan(t *testing.T) {
	tests := []struct {
		role       string
		wantView   bool
		wantDelete bool
	}{
		{"superadmin", true, true},
		{"admin", true, true},
		{"Admin", true, true},
		{"manager", true, false},
		{"viewer", false, false},
		{"visitor", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := authz.Can(tt.role, authz.CapView); got != tt.wantView {
				t.Errorf("Can(%q, view) = %v, want %v", tt.role, got, tt.wantView)
			}
			if got := authz.Can(tt.role, authz.CapDelete); got != tt.wantDelete {
				t.Errorf("Can(%q, delete) = %v, want %v", tt.role, got, tt.wantDelete)
			}
		})
	}
}

func TestCan_UnknownCapability(t *testing.T) {
	if authz.Can("superadmin", authz.Capability("ltiusage:unknown")) {
		t.Error("expected unknown capability to be denied")
	}
}

func TestRolesWith_ReturnsCopy(t *testing.T) {
	roles := authz.RolesWith(authz.CapDelete)
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", roles)
	}
	roles[0] = "viewer"
	if authz.Can("viewer", authz.CapDelete) {
		t.Error("mutating RolesWith result changed the capability table")
	}
}

func TestRequestHelpers(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		superAdmin bool
		admin      bool
		view       bool
		del        bool
	}{
		{"superadmin", requestAs("superadmin"), true, true, true, true},
		{"admin", requestAs("admin"), false, true, true, true},
		{"manager", requestAs("manager"), false, false, true, false},
		{"viewer", requestAs("viewer"), false, false, false, false},
		{"no user", httptest.NewRequest("GET", "/test", nil), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.IsSuperAdmin(tt.req); got != tt.superAdmin {
				t.Errorf("IsSuperAdmin = %v, want %v", got, tt.superAdmin)
			}
			if got := authz.IsAdmin(tt.req); got != tt.admin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.admin)
			}
			if got := authz.CanViewUsage(tt.req); got != tt.view {
				t.Errorf("CanViewUsage = %v, want %v", got, tt.view)
			}
			if got := authz.CanDeleteActivities(tt.req); got != tt.del {
				t.Errorf("CanDeleteActivities = %v, want %v", got, tt.del)
			}
		})
	}
}

func TestUserCtx_MalformedIDFailsClosed(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-object-id", Role: "admin"})

	role, _, _, ok := authz.UserCtx(req)
	if ok || role != "visitor" {
		t.Errorf("UserCtx = (%q, ok=%v), want (visitor, false)", role, ok)
	}
	if authz.CanViewUsage(req) {
		t.Error("expected malformed user id to be denied")
	}
}

func TestHasAnyRole(t *testing.T) {
	req := requestAs("Manager")
	if !authz.HasAnyRole(req, "admin", " manager ") {
		t.Error("expected HasAnyRole to match manager")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("expected HasAnyRole to reject admin")
	}
	role, ok := authz.Role(req)
	if !ok || role != "manager" {
		t.Errorf("Role = (%q, %v), want (manager, true)", role, ok)
	}
}
