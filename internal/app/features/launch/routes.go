// internal/app/features/launch/routes.go
package launch

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLaunch)
	return r
}
