package auth

import (
	"errors"
	"net/http"

	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/errorhandler"
	"github.com/payflow/payflow-api/internal/pkg/response"
	"github.com/payflow/payflow-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /auth/register
// @Summary Register a merchant
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response{data=AuthResponse}
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPhoneAlreadyExists):
			response.Conflict(w, "Phone already registered")
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Conflict(w, "Email already registered")
		default:
			errorhandler.Internal(r.Context(), w, err, "failed to register merchant")
		}
		return
	}

	response.Created(w, result)
}

// Login handles POST /auth/login
// @Summary Merchant login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=AuthResponse}
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	result, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid phone or password")
			return
		}
		errorhandler.Internal(r.Context(), w, err, "login failed with internal error")
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
// @Summary Rotate tokens
// @Tags Auth
// @Router /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrMerchantNotFound):
			response.Unauthorized(w, "Invalid or expired refresh token")
		default:
			errorhandler.Internal(r.Context(), w, err, "refresh failed")
		}
		return
	}

	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	_ = response.DecodeJSON(r.Body, &req)

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		errorhandler.Internal(r.Context(), w, err, "logout failed")
		return
	}
	response.NoContent(w)
}

// Me handles GET /auth/me
// @Summary Current merchant
// @Tags Auth
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetMerchantID(r.Context())

	result, err := h.service.GetCurrentMerchant(r.Context(), merchantID)
	if err != nil {
		if errors.Is(err, ErrMerchantNotFound) {
			response.NotFound(w, "Merchant not found")
			return
		}
		errorhandler.Internal(r.Context(), w, err, "failed to load merchant")
		return
	}

	response.OK(w, result)
}

// ChangePassword handles POST /me/change-password
// @Summary Change password
// @Tags Account
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} response.Response
// @Router /me/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.ValidationFailed(r.Context(), w, errs)
		return
	}

	err := h.service.ChangePassword(r.Context(), middleware.GetMerchantID(r.Context()), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			response.Error(w, http.StatusUnauthorized, response.CodeInvalidPassword, "Current password is incorrect")
		case errors.Is(err, ErrMerchantNotFound):
			response.NotFound(w, "Merchant not found")
		default:
			errorhandler.Internal(r.Context(), w, err, "failed to change password")
		}
		return
	}

	response.NoContent(w)
}
