package transaction

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the /me/transactions router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/export", h.Export)

	// Legacy path kept for older clients.
	r.Get("/customer/{id}/credits", h.Credits)

	return r
}

// CustomerRoutes registers the ledger routes nested under /me/customers.
func (h *Handler) CustomerRoutes(r chi.Router) {
	r.Get("/{id}/credits", h.Credits)
	r.Get("/{id}/credits/{creditId}/payments", h.CreditPayments)
	r.Post("/{id}/allocations/preview", h.Preview)
}
