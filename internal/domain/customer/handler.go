package customer

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/errorhandler"
	"github.com/payflow/payflow-api/internal/pkg/response"
	"github.com/payflow/payflow-api/internal/pkg/validator"
)

// Handler handles customer HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates customer handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /me/customers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), middleware.GetMerchantID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to list customers")
		return
	}

	out := make([]Response, 0, len(items))
	for _, c := range items {
		out = append(out, NewResponse(c))
	}
	response.WithMeta(w, out, response.Meta{Total: len(out)})
}

// Get handles GET /me/customers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	c, err := h.service.Get(r.Context(), middleware.GetMerchantID(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, NewResponse(c))
}

// Create handles POST /me/customers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetMerchantID(r.Context()), &req)
	if err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to create customer")
		return
	}
	response.Created(w, NewResponse(c))
}

// Update handles PUT /me/customers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	c, err := h.service.Update(r.Context(), middleware.GetMerchantID(r.Context()), id, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, NewResponse(c))
}

// Delete handles DELETE /me/customers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetMerchantID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrCustomerNotFound) {
		response.NotFound(w, "Customer not found")
		return
	}
	errorhandler.Internal(r.Context(), w, err, "customer request failed")
}
