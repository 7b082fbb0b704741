// internal/app/features/ltiusage/routes.go
package ltiusage

import (
	"github.com/dalemusser/ltiusage/internal/app/system/auth"
	"github.com/dalemusser/ltiusage/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

const (
	// ServiceMethod names the JSON pagination service.
	ServiceMethod = "local_ltiusage_get_pagination"
	// ListingMethod names the JSON listing of every group.
	ListingMethod = "local_ltiusage_get_listing"
)

// Routes mounts the report under the path where this router is mounted
// (typically "/ltiusage" from bootstrap).
//
// Read routes only require a signed-in caller; the page service itself
// refuses callers without the view capability. Deleting requires the
// delete capability.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/groups/{typeID}", h.ServeGroup)
		pr.Get("/api/pagination", h.ServePagination)
		pr.Get("/api/listing", h.ServeListing)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(authz.RolesWith(authz.CapDelete)...))

		pr.Post("/activities/{cmid}/delete", h.HandleDelete)
	})

	return r
}
