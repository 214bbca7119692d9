package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/errorhandler"
	"github.com/payflow/payflow-api/internal/pkg/response"
)

// Handler handles notification HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /me/notifications
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	merchantID := middleware.GetMerchantID(r.Context())

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	items, err := h.service.List(r.Context(), merchantID, limit, offset)
	if err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to list notifications")
		return
	}

	out := make([]*Response, len(items))
	for i, n := range items {
		out[i] = ResponseFromEntity(n)
	}
	response.WithMeta(w, out, response.Meta{Total: len(out), Limit: limit, Offset: offset})
}

// UnreadCount handles GET /me/notifications/unread-count
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), middleware.GetMerchantID(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to count notifications")
		return
	}
	response.OK(w, UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead handles POST /me/notifications/{notificationId}/read
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), middleware.GetMerchantID(r.Context()), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		errorhandler.Internal(r.Context(), w, err, "failed to mark notification")
		return
	}
	response.OK(w, map[string]string{"status": "ok"})
}

// MarkAllAsRead handles POST /me/notifications/read-all
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllAsRead(r.Context(), middleware.GetMerchantID(r.Context())); err != nil {
		errorhandler.Internal(r.Context(), w, err, "failed to mark notifications")
		return
	}
	response.OK(w, map[string]string{"status": "ok"})
}

// Routes returns notification router. Auth is applied by the parent /me group.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/{notificationId}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)
	return r
}
