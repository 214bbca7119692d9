package reminder

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the /me/reminder-settings router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetSettings)
	r.Put("/", h.UpdateSettings)
	return r
}

// CustomerRoutes registers preferences under /me/customers.
func (h *Handler) CustomerRoutes(r chi.Router) {
	r.Get("/{id}/notification-preferences", h.GetPreferences)
	r.Put("/{id}/notification-preferences", h.UpdatePreferences)
}
