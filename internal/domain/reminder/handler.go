package reminder

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/errorhandler"
	"github.com/payflow/payflow-api/internal/pkg/response"
	"github.com/payflow/payflow-api/internal/pkg/validator"
)

// Handler handles reminder HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates reminder handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSettings handles GET /me/reminder-settings
// @Summary Reminder settings of the current merchant
// @Tags Reminders
// @Produce json
// @Success 200 {object} response.Response{data=SettingsResponse}
// @Router /me/reminder-settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context(), middleware.GetMerchantID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to load reminder settings")
		return
	}
	response.OK(w, SettingsResponseFromEntity(settings))
}

// UpdateSettings handles PUT /me/reminder-settings
// @Summary Update reminder settings
// @Tags Reminders
// @Accept json
// @Produce json
// @Param request body SettingsRequest true "Settings"
// @Success 200 {object} response.Response{data=SettingsResponse}
// @Router /me/reminder-settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), middleware.GetMerchantID(r.Context()), &req)
	if err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to save reminder settings")
		return
	}
	response.OK(w, SettingsResponseFromEntity(settings))
}

// GetPreferences handles GET /me/customers/{id}/notification-preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), middleware.GetMerchantID(r.Context()), customerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, PreferencesResponseFromEntity(prefs))
}

// UpdatePreferences handles PUT /me/customers/{id}/notification-preferences
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid customer ID")
		return
	}

	var req PreferencesRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), middleware.GetMerchantID(r.Context()), customerID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, PreferencesResponseFromEntity(prefs))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidChannel):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, err, "reminder request failed")
	}
}
