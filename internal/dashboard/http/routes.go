package dashboardhttp

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the dashboard page, its grid fragment and the action endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handlePage)
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/grid", h.handleGrid)
		// Search fires per keystroke and stays under the global limit only.
		r.Post("/search", h.handleSearch)
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(120, time.Minute))
			r.Post("/sort", h.handleSort)
			r.Post("/retry", h.handleRetry)
		})
	})
}

// MountAPI registers the read-only JSON endpoints. Unknown API paths answer with a problem
// document rather than the HTML not-found page.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/api/inventory", h.handleAPI)
	r.Get("/api/*", h.handleAPINotFound)
}
