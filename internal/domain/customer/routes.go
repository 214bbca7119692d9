package customer

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns customer router. Extra registrars add customer-scoped
// routes owned by other domains (credits, notification preferences); they
// must use {id} for the customer path parameter.
func (h *Handler) Routes(extra ...func(r chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	for _, register := range extra {
		register(r)
	}

	return r
}
