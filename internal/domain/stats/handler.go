package stats

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/errorhandler"
	"github.com/payflow/payflow-api/internal/pkg/response"
)

// Handler handles stats HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates stats handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /me/stats?from=&to=
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Get(r.Context(), middleware.GetMerchantID(r.Context()), period)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			response.BadRequest(w, err.Error())
			return
		}
		errorhandler.Internal(r.Context(), w, err, "failed to compute stats")
		return
	}
	response.OK(w, result)
}

// Routes returns stats router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	return r
}
